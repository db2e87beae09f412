package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Env            string   `env:"ENVIRONMENT"`
	ServerPort     int      `env:"SERVER_PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Shared secret the scheduler/cron caller must present on the
	// poll-live route. Empty disables the check.
	CronSecret string `env:"NOTIFICATION_CRON_SECRET"`

	PollIntervalSecs int `env:"POLL_INTERVAL_SECS" envDefault:"300"`

	SportWinner struct {
		APIURL            string `env:"SPORTWINNER_API_URL" envDefault:"https://skvb.sportwinner.de/php/skvb/service.php"`
		Referer           string `env:"SPORTWINNER_REFERER" envDefault:"https://skvb.sportwinner.de/"`
		RequestsPerMinute int    `env:"SPORTWINNER_RPM" envDefault:"60"`
		TimeoutSecs       int    `env:"SPORTWINNER_TIMEOUT_SECS" envDefault:"15"`
	}

	// Durable document store. KV wins when configured; otherwise the local
	// SQLite file; otherwise process memory.
	KV struct {
		RestURL   string `env:"KV_REST_API_URL"`
		RestToken string `env:"KV_REST_API_TOKEN"`
	}
	SQLitePath string `env:"SQLITE_PATH" envDefault:"ligawatch.sqlite"`

	VAPID struct {
		PublicKey  string `env:"VAPID_PUBLIC_KEY"`
		PrivateKey string `env:"VAPID_PRIVATE_KEY"`
		Subject    string `env:"VAPID_SUBJECT" envDefault:"mailto:admin@example.com"`
		TTLSecs    int    `env:"VAPID_TTL_SECS" envDefault:"3600"`
	}

	log *zap.Logger
}

func NewConfig(lc fx.Lifecycle, log *zap.Logger) *Config {
	godotenv.Load()

	cfg := &Config{log: log}
	if err := env.Parse(cfg); err != nil {
		log.Sugar().Panicf("failed to parse config: %v", err)
	}

	if cfg.VAPID.PublicKey == "" || cfg.VAPID.PrivateKey == "" {
		if cfg.Env == "production" {
			log.Sugar().Panic("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be configured")
		}
		log.Sugar().Warn("VAPID keys are not configured, pushes will fail to send")
	}

	return cfg
}

func (cfg *Config) PollInterval() time.Duration {
	return time.Duration(cfg.PollIntervalSecs) * time.Second
}

func (cfg *Config) SportWinnerTimeout() time.Duration {
	return time.Duration(cfg.SportWinner.TimeoutSecs) * time.Second
}
