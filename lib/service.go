// Package lib holds the subscription service surface consumed by the HTTP
// layer.
package lib

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fiffu/ligawatch/config"
	"github.com/fiffu/ligawatch/lib/models"
	"github.com/fiffu/ligawatch/lib/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrInvalidInput marks caller mistakes on subscribe/unsubscribe/status.
// Surfaced synchronously, never retried, never logged as system errors.
var ErrInvalidInput = errors.New("invalid input")

// PushKeys are the client-side secrets addressing one push channel.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type Service struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
}

func NewService(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, st *store.Store) *Service {
	return &Service{cfg, log, st}
}

// Subscribe upserts a push registration for one team. The identity tuple
// (endpoint, season, league, team) holds at most one record; re-subscribing
// refreshes keys and updatedAt in place.
func (svc *Service) Subscribe(ctx context.Context, filter models.Filter, endpoint string, keys PushKeys) (models.Subscription, error) {
	if err := validateFilter(filter); err != nil {
		return models.Subscription{}, err
	}
	if endpoint == "" {
		return models.Subscription{}, fmt.Errorf("%w: subscription endpoint is required", ErrInvalidInput)
	}
	if keys.P256dh == "" || keys.Auth == "" {
		return models.Subscription{}, fmt.Errorf("%w: subscription keys p256dh and auth are required", ErrInvalidInput)
	}

	sub, err := svc.store.Upsert(ctx, models.Subscription{
		Season:   filter.Season,
		League:   filter.League,
		Team:     filter.Team,
		Endpoint: endpoint,
		P256dh:   keys.P256dh,
		Auth:     keys.Auth,
	})
	if err != nil {
		return models.Subscription{}, err
	}
	svc.log.Sugar().Infow("subscription upserted",
		"season", sub.Season, "league", sub.League, "team", sub.Team)
	return sub, nil
}

// Unsubscribe removes the matching registration and its derived state.
func (svc *Service) Unsubscribe(ctx context.Context, filter models.Filter, endpoint string) (bool, error) {
	if err := validateFilter(filter); err != nil {
		return false, err
	}
	if endpoint == "" {
		return false, fmt.Errorf("%w: endpoint is required", ErrInvalidInput)
	}
	return svc.store.Remove(ctx, models.IdentityOf(filter, endpoint))
}

// Status is the read-only projection clients poll after registering.
func (svc *Service) Status(ctx context.Context, filter models.Filter, endpoint string) (store.Status, error) {
	if err := validateFilter(filter); err != nil {
		return store.Status{}, err
	}
	if endpoint == "" {
		return store.Status{}, fmt.Errorf("%w: endpoint is required", ErrInvalidInput)
	}
	return svc.store.StatusOf(ctx, models.IdentityOf(filter, endpoint))
}

// VAPIDPublicKey exposes the key browsers need to register a push channel.
func (svc *Service) VAPIDPublicKey() (string, error) {
	if svc.cfg.VAPID.PublicKey == "" {
		return "", errors.New("VAPID public key is not configured")
	}
	return svc.cfg.VAPID.PublicKey, nil
}

func validateFilter(filter models.Filter) error {
	var missing []string
	if filter.Season == "" {
		missing = append(missing, "season")
	}
	if filter.League == "" {
		missing = append(missing, "league")
	}
	if filter.Team == "" {
		missing = append(missing, "team")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}
