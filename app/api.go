package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fiffu/ligawatch/config"
	"github.com/fiffu/ligawatch/lib"
	"github.com/fiffu/ligawatch/lib/berlin"
	"github.com/fiffu/ligawatch/lib/models"
	"github.com/fiffu/ligawatch/lib/poller"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewAPI(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, svc *lib.Service, p *poller.Poller, scraper *berlin.Scraper) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	srv := &http.Server{Addr: addr, Handler: router(cfg, log, svc, p, scraper)}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Sugar().Infof("API listening on %s", addr)
			go srv.ListenAndServe()
			return nil
		},
		OnStop: srv.Shutdown,
	})

	return srv
}

func router(cfg *config.Config, log *zap.Logger, svc *lib.Service, p *poller.Poller, scraper *berlin.Scraper) http.Handler {
	ctrl := &controller{cfg, log, svc, p, scraper}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/notifications", func(r chi.Router) {
			r.Post("/subscribe", ctrl.subscribe)
			r.Post("/unsubscribe", ctrl.unsubscribe)
			r.Get("/status", ctrl.status)
			r.Get("/vapid-public-key", ctrl.vapidPublicKey)
			r.Get("/poll-live", ctrl.pollLive)
		})
		r.Get("/berlin", ctrl.berlinLeague)
	})

	// The subscribe surface is called from the browser client directly.
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Notification-Secret"},
	}).Handler(r)
}

type controller struct {
	cfg     *config.Config
	log     *zap.Logger
	svc     *lib.Service
	poller  *poller.Poller
	scraper *berlin.Scraper
}

func (ctrl *controller) reject(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
}

func (ctrl *controller) rejectError(w http.ResponseWriter, err error) {
	if errors.Is(err, lib.ErrInvalidInput) {
		ctrl.reject(w, http.StatusBadRequest, err)
		return
	}
	ctrl.log.Sugar().Errorw("request failed", "err", err)
	ctrl.reject(w, http.StatusInternalServerError, err)
}

func (ctrl *controller) resolve(w http.ResponseWriter, status int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

type subscribeBody struct {
	Season       string `json:"season"`
	League       string `json:"league"`
	Team         string `json:"team"`
	Subscription struct {
		Endpoint string       `json:"endpoint"`
		Keys     lib.PushKeys `json:"keys"`
	} `json:"subscription"`
}

func (ctrl *controller) subscribe(w http.ResponseWriter, r *http.Request) {
	var body subscribeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ctrl.reject(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}

	filter := trimFilter(body.Season, body.League, body.Team)
	saved, err := ctrl.svc.Subscribe(r.Context(), filter, strings.TrimSpace(body.Subscription.Endpoint), body.Subscription.Keys)
	if err != nil {
		ctrl.rejectError(w, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{"ok": true, "subscription": saved})
}

type unsubscribeBody struct {
	Season   string `json:"season"`
	League   string `json:"league"`
	Team     string `json:"team"`
	Endpoint string `json:"endpoint"`
}

func (ctrl *controller) unsubscribe(w http.ResponseWriter, r *http.Request) {
	var body unsubscribeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ctrl.reject(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}

	filter := trimFilter(body.Season, body.League, body.Team)
	removed, err := ctrl.svc.Unsubscribe(r.Context(), filter, strings.TrimSpace(body.Endpoint))
	if err != nil {
		ctrl.rejectError(w, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{"ok": true, "removed": removed})
}

func (ctrl *controller) status(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := trimFilter(q.Get("season"), q.Get("league"), q.Get("team"))
	status, err := ctrl.svc.Status(r.Context(), filter, strings.TrimSpace(q.Get("endpoint")))
	if err != nil {
		ctrl.rejectError(w, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{
		"ok":            true,
		"subscribed":    status.Subscribed,
		"activeGameIds": status.ActiveGameIDs,
	})
}

func (ctrl *controller) vapidPublicKey(w http.ResponseWriter, r *http.Request) {
	key, err := ctrl.svc.VAPIDPublicKey()
	if err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{"key": key})
}

// pollLive lets an external scheduler trigger a poll cycle. Guarded by the
// cron secret when one is configured.
func (ctrl *controller) pollLive(w http.ResponseWriter, r *http.Request) {
	if expected := ctrl.cfg.CronSecret; expected != "" {
		actual := r.Header.Get("X-Notification-Secret")
		bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if actual != expected && bearer != expected {
			ctrl.reject(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
	}

	summary, err := ctrl.poller.Run(r.Context(), time.Now().UTC())
	if err != nil {
		ctrl.rejectError(w, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{
		"ok":                 true,
		"totalSubscriptions": summary.TotalSubscriptions,
		"totalActiveGames":   summary.TotalActiveGames,
		"pushed":             summary.Pushed,
	})
}

func (ctrl *controller) berlinLeague(w http.ResponseWriter, r *http.Request) {
	league := berlin.LeagueKey(strings.TrimSpace(r.URL.Query().Get("league")))
	if league == "" {
		league = berlin.Berlinliga
	}
	data, err := ctrl.scraper.Fetch(r.Context(), league)
	if err != nil {
		ctrl.rejectError(w, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, data)
}

func trimFilter(season, league, team string) models.Filter {
	return models.Filter{
		Season: strings.TrimSpace(season),
		League: strings.TrimSpace(league),
		Team:   strings.TrimSpace(team),
	}
}
