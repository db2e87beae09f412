package app

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewTransport(lc fx.Lifecycle, log *zap.Logger) http.RoundTripper {
	return &transport{base: http.DefaultTransport, log: log}
}

type transport struct {
	base http.RoundTripper
	log  *zap.Logger
}

func (tpt *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := tpt.base.RoundTrip(req)
	if err != nil {
		tpt.log.Sugar().Debugw("outbound request failed", "host", req.URL.Host, "err", err)
	}
	return resp, err
}
