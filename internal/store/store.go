package store

import (
	"context"
	"errors"

	model "worktracker.com/worktracker/internal/models"
)

// AnyVersion disables the version check on Write (last writer wins).
const AnyVersion = ^uint64(0)

var ErrOptimisticLock = errors.New("optimistic locking conflict")

// Store persists the whole document. Write succeeds only when the stored version still
// equals expected (or expected is AnyVersion) and sets doc.Version to the new version.
type Store interface {
	Read(ctx context.Context) (*model.Document, error)
	Write(ctx context.Context, doc *model.Document, expected uint64) error
	Close() error
}
