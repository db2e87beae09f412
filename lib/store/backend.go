// Package store persists the notification document. One backend holds the
// whole Store under a single well-known key; mutations follow a read
// snapshot, clone, mutate, write-once cycle with no finer-grained locking.
package store

import (
	"context"
	"errors"

	"github.com/fiffu/ligawatch/lib/models"
)

// DocumentKey is the well-known key of the persisted Store document.
const DocumentKey = "kegel:notifications:v1"

// ErrNoDocument is returned by backends when no document has been written
// yet. Callers treat it as an empty first-run Store.
var ErrNoDocument = errors.New("store: no document")

// Backend reads and replaces the durable Store document.
type Backend interface {
	Read(ctx context.Context) (*models.Store, error)
	Write(ctx context.Context, doc *models.Store) error
}
