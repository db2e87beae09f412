// Package senders delivers notification events to subscriber endpoints.
package senders

import (
	"context"
	"net/http"

	"github.com/fiffu/ligawatch/config"
	"github.com/fiffu/ligawatch/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Outcome classifies one delivery attempt. Retryable failures are swallowed
// for the cycle and retried implicitly on the next observed change; a
// permanently invalid endpoint must be unsubscribed by the caller.
type Outcome int

const (
	Delivered Outcome = iota
	RetryableFailure
	PermanentlyInvalid
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case RetryableFailure:
		return "retryable_failure"
	case PermanentlyInvalid:
		return "permanently_invalid"
	default:
		return "unknown"
	}
}

type Sender interface {
	Send(ctx context.Context, sub *models.Subscription, event *models.Event) (Outcome, error)
}

type Registry map[string]Sender

func NewSenderRegistry(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, transport http.RoundTripper) Registry {
	base := base{log, cfg, transport}
	return map[string]Sender{
		"webpush": &webpushSender{base},
	}
}

type base struct {
	log       *zap.Logger
	cfg       *config.Config
	transport http.RoundTripper
}
