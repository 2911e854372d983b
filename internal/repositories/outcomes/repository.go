package outcomes

//go:generate mockgen -destination=mock/mock_repository.go -package=mockoutcomes -source=repository.go

import (
	"context"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
)

// Repository is the append-only journal of action outcomes per encounter
type Repository interface {
	// Append records an outcome at the end of the encounter's journal
	Append(ctx context.Context, encounterID string, outcome *actions.Outcome) error

	// List returns the encounter's outcomes in the order they happened
	List(ctx context.Context, encounterID string) ([]*actions.Outcome, error)

	// Delete drops the encounter's journal
	Delete(ctx context.Context, encounterID string) error
}
