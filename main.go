package main

import (
	"net/http"
	"os"
	"time"

	"github.com/fiffu/ligawatch/app"
	"github.com/fiffu/ligawatch/config"
	"github.com/fiffu/ligawatch/lib"
	"github.com/fiffu/ligawatch/senders"
	"github.com/go-co-op/gocron"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger() (*zap.Logger, error) {
	switch os.Getenv("ENVIRONMENT") {
	default:
		return zap.NewDevelopment()

	case "production":
		logCfg := zap.NewProductionConfig()
		logCfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			t = t.UTC()
			zapcore.ISO8601TimeEncoder(t, enc)
		}
		return logCfg.Build()
	}
}

func main() {
	fx.New(
		fx.Provide(NewLogger),
		fx.Provide(config.NewConfig),

		fx.Provide(app.NewTransport),
		fx.Provide(app.NewStoreBackend),
		fx.Provide(app.NewStore),
		fx.Provide(app.NewUpstreamClient),
		fx.Provide(app.NewBerlinScraper),
		fx.Provide(senders.NewSenderRegistry),
		fx.Provide(app.NewPoller),
		fx.Provide(lib.NewService),
		fx.Provide(app.NewScheduler),
		fx.Provide(app.NewAPI),

		fx.Invoke(func(*http.Server) {}),
		fx.Invoke(func(*gocron.Scheduler) {}),
	).Run()
}
