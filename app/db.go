package app

import (
	"net/http"

	"github.com/fiffu/ligawatch/config"
	"github.com/fiffu/ligawatch/lib/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewStoreBackend picks the document backend: the KV REST service when
// configured, else a local SQLite file, else process memory. All three hold
// the same single-document shape.
func NewStoreBackend(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, transport http.RoundTripper) store.Backend {
	sugar := log.Sugar()

	if cfg.KV.RestURL != "" && cfg.KV.RestToken != "" {
		sugar.Infow("store backend: kv", "url", cfg.KV.RestURL)
		return store.NewKVBackend(cfg.KV.RestURL, cfg.KV.RestToken, transport)
	}

	if cfg.SQLitePath != "" {
		backend, err := store.NewSQLiteBackend(cfg.SQLitePath)
		if err != nil {
			sugar.Panicw("failed to open sqlite store", "path", cfg.SQLitePath, "err", err)
		}
		sugar.Infow("store backend: sqlite", "path", cfg.SQLitePath)
		return backend
	}

	sugar.Warn("store backend: memory (subscriptions will not survive restarts)")
	return store.NewMemoryBackend()
}

func NewStore(backend store.Backend) *store.Store {
	return store.New(backend)
}
