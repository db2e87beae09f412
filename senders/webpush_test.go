package senders

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/fiffu/ligawatch/config"
	"github.com/fiffu/ligawatch/lib/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// browserKeys generates a P-256 keypair and auth secret the way a browser
// does when registering a push subscription.
func browserKeys(t *testing.T) (p256dh, auth string) {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	secret := make([]byte, 16)
	_, err = rand.Read(secret)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(secret)
}

func newWebpushFixture(t *testing.T, status int) (*webpushSender, *models.Subscription, *int) {
	t.Helper()

	requestCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "aes128gcm", r.Header.Get("Content-Encoding"))
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	private, public, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.VAPID.Subject = "mailto:admin@example.com"
	cfg.VAPID.PublicKey = public
	cfg.VAPID.PrivateKey = private
	cfg.VAPID.TTLSecs = 60

	p256dh, auth := browserKeys(t)
	sub := &models.Subscription{
		Season: "11", League: "L1", Team: "FC Example",
		Endpoint: srv.URL, P256dh: p256dh, Auth: auth,
	}
	return &webpushSender{base{zap.NewNop(), cfg, http.DefaultTransport}}, sub, &requestCount
}

func sampleEvent() *models.Event {
	return &models.Event{
		Kind:   models.EventScoreChanged,
		GameID: "4711",
		State:  "3:1",
		Title:  "FC Example: Live-Update",
		Body:   "FC Example vs FC Other: 3:1 (FC Example fuehrt, Diff 2)",
		URL:    "/tournaments?season=11&league=L1&team=FC+Example",
	}
}

func TestWebpushSendDelivered(t *testing.T) {
	sender, sub, count := newWebpushFixture(t, http.StatusCreated)

	outcome, err := sender.Send(context.Background(), sub, sampleEvent())
	require.NoError(t, err)
	assert.Equal(t, Delivered, outcome)
	assert.Equal(t, 1, *count)
}

func TestWebpushSendGoneEndpointIsPermanent(t *testing.T) {
	sender, sub, _ := newWebpushFixture(t, http.StatusGone)

	outcome, err := sender.Send(context.Background(), sub, sampleEvent())
	assert.Error(t, err)
	assert.Equal(t, PermanentlyInvalid, outcome)
}

func TestWebpushSendNotFoundIsPermanent(t *testing.T) {
	sender, sub, _ := newWebpushFixture(t, http.StatusNotFound)

	outcome, err := sender.Send(context.Background(), sub, sampleEvent())
	assert.Error(t, err)
	assert.Equal(t, PermanentlyInvalid, outcome)
}

func TestWebpushSendServerErrorIsRetryable(t *testing.T) {
	sender, sub, _ := newWebpushFixture(t, http.StatusInternalServerError)

	outcome, err := sender.Send(context.Background(), sub, sampleEvent())
	assert.Error(t, err)
	assert.Equal(t, RetryableFailure, outcome)
}

func TestWebpushSendGarbageKeysIsRetryable(t *testing.T) {
	sender, sub, count := newWebpushFixture(t, http.StatusCreated)
	sub.P256dh = "not-a-key"

	outcome, err := sender.Send(context.Background(), sub, sampleEvent())
	assert.Error(t, err)
	assert.Equal(t, RetryableFailure, outcome)
	assert.Zero(t, *count, "encryption fails before any request is made")
}
