package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/carlmjohnson/requests"
	"github.com/fiffu/ligawatch/lib/models"
)

// KVBackend stores the document in a REST key-value service (Upstash-style:
// GET {base}/get/{key}, POST {base}/set/{key}, Bearer auth). The value is the
// JSON-encoded document; the service wraps replies in {"result": ...}.
type KVBackend struct {
	baseURL   string
	token     string
	transport http.RoundTripper
}

func NewKVBackend(baseURL, token string, transport http.RoundTripper) *KVBackend {
	return &KVBackend{baseURL: baseURL, token: token, transport: transport}
}

type kvGetReply struct {
	Result *string `json:"result"`
}

func (b *KVBackend) Read(ctx context.Context) (*models.Store, error) {
	var reply kvGetReply
	err := requests.
		URL(b.baseURL + "/get/" + url.PathEscape(DocumentKey)).
		Transport(b.transport).
		Bearer(b.token).
		ToJSON(&reply).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("kv read: %w", err)
	}
	if reply.Result == nil || *reply.Result == "" {
		return nil, ErrNoDocument
	}

	doc := models.NewStore()
	if err := json.Unmarshal([]byte(*reply.Result), doc); err != nil {
		return nil, fmt.Errorf("kv read: decode document: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

func (b *KVBackend) Write(ctx context.Context, doc *models.Store) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("kv write: encode document: %w", err)
	}
	err = requests.
		URL(b.baseURL + "/set/" + url.PathEscape(DocumentKey)).
		Transport(b.transport).
		Bearer(b.token).
		ContentType("application/json").
		BodyBytes(body).
		Fetch(ctx)
	if err != nil {
		return fmt.Errorf("kv write: %w", err)
	}
	return nil
}
