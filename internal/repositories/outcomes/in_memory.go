package outcomes

import (
	"context"
	"sync"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
)

type inMemoryRepository struct {
	mu       sync.RWMutex
	journals map[string][]*actions.Outcome
}

// NewInMemoryRepository creates a journal kept in process memory
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		journals: make(map[string][]*actions.Outcome),
	}
}

// Append implements Repository
func (r *inMemoryRepository) Append(ctx context.Context, encounterID string, outcome *actions.Outcome) error {
	if encounterID == "" {
		return errors.InvalidArgumentf("encounter ID cannot be empty")
	}
	if outcome == nil {
		return errors.InvalidArgumentf("outcome cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.journals[encounterID] = append(r.journals[encounterID], outcome)
	return nil
}

// List implements Repository
func (r *inMemoryRepository) List(ctx context.Context, encounterID string) ([]*actions.Outcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	journal := r.journals[encounterID]
	out := make([]*actions.Outcome, len(journal))
	copy(out, journal)
	return out, nil
}

// Delete implements Repository
func (r *inMemoryRepository) Delete(ctx context.Context, encounterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.journals, encounterID)
	return nil
}
