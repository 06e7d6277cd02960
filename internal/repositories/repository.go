package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"worktracker.com/worktracker/internal/clock"
	apperrors "worktracker.com/worktracker/internal/errors"
	"worktracker.com/worktracker/internal/store"
)

type Policy string

const (
	PolicyOptimistic     Policy = "optimistic"
	PolicyLastWriterWins Policy = "last-writer-wins"
)

func (p Policy) Valid() bool {
	return p == PolicyOptimistic || p == PolicyLastWriterWins
}

var ErrOptimisticLock = store.ErrOptimisticLock

// ErrNoChange returned from an Update callback ends the unit of work successfully
// without writing.
var ErrNoChange = errors.New("no change")

// Repository runs read-modify-write units of work against a Store.
// Update callbacks may run more than once under the optimistic policy and must not have
// side effects outside the Tx.
type Repository struct {
	store   store.Store
	clock   clock.Clock
	policy  Policy
	retries int
	mu      sync.Mutex
}

func NewRepository(s store.Store, c clock.Clock, policy Policy, retries int) *Repository {
	if retries < 1 {
		retries = 1
	}
	return &Repository{
		store:   s,
		clock:   c,
		policy:  policy,
		retries: retries,
	}
}

func (r *Repository) View(ctx context.Context, fn func(tx *Tx) error) error {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return apperrors.ErrPersistence.Wrap(err)
	}
	return fn(newTx(doc))
}

// Update commits only if fn returns nil and the write succeeds. Hooks registered with
// Tx.AfterCommit run after a successful commit (or ErrNoChange) before the lock is released.
func (r *Repository) Update(ctx context.Context, fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 1; ; attempt++ {
		err := r.updateOnce(ctx, fn)
		if !errors.Is(err, store.ErrOptimisticLock) {
			return err
		}
		if attempt >= r.retries {
			return apperrors.ErrConflict.Wrap(fmt.Errorf("gave up after %d attempts: %w", attempt, err))
		}
		log.Printf("repository: optimistic lock conflict, retrying (attempt %d)", attempt)
	}
}

func (r *Repository) updateOnce(ctx context.Context, fn func(tx *Tx) error) error {
	current, err := r.store.Read(ctx)
	if err != nil {
		return apperrors.ErrPersistence.Wrap(err)
	}

	working := current.Clone()
	tx := newTx(working)
	if err := fn(tx); err != nil {
		if errors.Is(err, ErrNoChange) {
			tx.runAfterCommit()
			return nil
		}
		return err
	}

	working.LastUpdated = r.clock.Now()

	expected := current.Version
	if r.policy == PolicyLastWriterWins {
		expected = store.AnyVersion
	}

	if err := r.store.Write(ctx, working, expected); err != nil {
		if errors.Is(err, store.ErrOptimisticLock) {
			return err
		}
		return apperrors.ErrPersistence.Wrap(err)
	}

	tx.runAfterCommit()
	return nil
}

func (r *Repository) Close() error {
	return r.store.Close()
}
