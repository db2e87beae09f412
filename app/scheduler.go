package app

import (
	"context"
	"net/http"
	"time"

	"github.com/fiffu/ligawatch/config"
	"github.com/fiffu/ligawatch/lib/poller"
	"github.com/fiffu/ligawatch/lib/sportwinner"
	"github.com/fiffu/ligawatch/lib/store"
	"github.com/fiffu/ligawatch/senders"
	"github.com/go-co-op/gocron"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewPoller(lc fx.Lifecycle, log *zap.Logger, st *store.Store, client *sportwinner.Client, reg senders.Registry) *poller.Poller {
	return poller.New(log, st, client, reg)
}

func NewUpstreamClient(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, transport http.RoundTripper) *sportwinner.Client {
	return sportwinner.NewClient(
		log,
		transport,
		cfg.SportWinner.APIURL,
		cfg.SportWinner.Referer,
		cfg.SportWinner.RequestsPerMinute,
		cfg.SportWinnerTimeout(),
	)
}

// NewScheduler runs the poll-and-dispatch job on a fixed interval. The job
// itself is re-entrant (all state lives in the store document), so a missed
// or doubled tick is harmless; at most one run executes per process at a
// time via the poller's own lock.
func NewScheduler(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, p *poller.Poller) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.Every(cfg.PollInterval()).Do(func() {
		if _, err := p.Run(context.Background(), time.Now().UTC()); err != nil {
			log.Sugar().Errorw("scheduled poll run failed", "err", err)
		}
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Sugar().Infow("poll scheduler starting", "interval", cfg.PollInterval())
			s.StartAsync()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})

	return s
}
