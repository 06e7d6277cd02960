package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	model "worktracker.com/worktracker/internal/models"
)

// FileStore keeps the document as a single JSON file, rewritten in full on every write.
// Writers in other processes are excluded by an advisory lock on path + ".lock".
type FileStore struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{path: path, lock: flock.New(path + ".lock")}, nil
}

func (s *FileStore) Read(ctx context.Context) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *FileStore) Write(ctx context.Context, doc *model.Document, expected uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock document: %w", err)
	}
	defer s.lock.Unlock()

	current, err := s.load()
	if err != nil {
		return err
	}
	if expected != AnyVersion && current.Version != expected {
		return ErrOptimisticLock
	}

	next := *doc
	next.Version = current.Version + 1
	next.Normalize()

	data, err := json.MarshalIndent(&next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}

	doc.Version = next.Version
	return nil
}

func (s *FileStore) Close() error {
	return s.lock.Close()
}

func (s *FileStore) load() (*model.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewDocument(), nil
		}
		return nil, fmt.Errorf("read document: %w", err)
	}

	doc := model.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", s.path, err)
	}
	doc.Normalize()
	return doc, nil
}
