package store

import (
	"context"
	"sync"

	"github.com/fiffu/ligawatch/lib/models"
)

// MemoryBackend keeps the document in-process. Used when no durable backend
// is configured; does not survive restarts.
type MemoryBackend struct {
	mu  sync.Mutex
	doc *models.Store
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Read(ctx context.Context) (*models.Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil {
		return nil, ErrNoDocument
	}
	return b.doc.Clone(), nil
}

func (b *MemoryBackend) Write(ctx context.Context, doc *models.Store) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc = doc.Clone()
	return nil
}
