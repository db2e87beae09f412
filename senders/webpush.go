package senders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/fiffu/ligawatch/lib/models"
)

// webpushSender delivers events over the Web Push protocol with VAPID auth.
type webpushSender struct {
	base
}

func (s *webpushSender) Send(ctx context.Context, sub *models.Subscription, event *models.Event) (Outcome, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return RetryableFailure, fmt.Errorf("encode event: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      &http.Client{Transport: s.transport},
		Subscriber:      s.cfg.VAPID.Subject,
		VAPIDPublicKey:  s.cfg.VAPID.PublicKey,
		VAPIDPrivateKey: s.cfg.VAPID.PrivateKey,
		TTL:             s.cfg.VAPID.TTLSecs,
	})
	if err != nil {
		return RetryableFailure, fmt.Errorf("webpush send: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		// The push service reports the endpoint gone or expired: the
		// device unsubscribed upstream.
		return PermanentlyInvalid, fmt.Errorf("webpush send: endpoint invalid (status %d)", resp.StatusCode)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Delivered, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return RetryableFailure, fmt.Errorf("webpush send: status %d: %s", resp.StatusCode, body)
	}
}
