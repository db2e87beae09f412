// Package sportwinner talks to the SportWinner service.php backend: a
// single command endpoint taking form-encoded POSTs and answering with JSON
// arrays of arrays. Only the commands the notification core consumes are
// implemented here.
package sportwinner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Row is one raw result row. Cells arrive as strings, numbers or null
// depending on the command.
type Row []any

// Cell returns the trimmed string form of cell i, or "" when the row is too
// short or the cell is null.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	switch v := r[i].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

type Client struct {
	log       *zap.Logger
	transport http.RoundTripper
	baseURL   string
	referer   string
	limiter   *rate.Limiter
	timeout   time.Duration
}

func NewClient(log *zap.Logger, transport http.RoundTripper, baseURL, referer string, requestsPerMinute int, timeout time.Duration) *Client {
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		log:       log,
		transport: transport,
		baseURL:   baseURL,
		referer:   referer,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		timeout:   timeout,
	}
}

// Command executes one backend command. Every call is rate limited and
// bounded by the client timeout; a timed-out call surfaces as an ordinary
// fetch error for the caller to skip and retry next cycle.
func (c *Client) Command(ctx context.Context, command string, params map[string]string) ([]Row, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("sportwinner %s: rate limit: %w", command, err)
	}

	form := url.Values{"command": {command}}
	for k, v := range params {
		if v != "" {
			form.Set(k, v)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var raw json.RawMessage
	err := requests.
		URL(c.baseURL).
		Transport(c.transport).
		Header("Referer", c.referer).
		BodyForm(form).
		ToJSON(&raw).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("sportwinner %s: %w", command, err)
	}

	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("sportwinner %s: decode rows: %w", command, err)
	}
	c.log.Sugar().Debugw("sportwinner command", "command", command, "rows", len(rows))
	return rows, nil
}
