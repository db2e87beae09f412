package app

import (
	"net/http"

	"github.com/fiffu/ligawatch/lib/berlin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewBerlinScraper(lc fx.Lifecycle, log *zap.Logger, transport http.RoundTripper) *berlin.Scraper {
	return berlin.NewScraper(log, transport)
}
