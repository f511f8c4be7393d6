package calendar

import "context"

// Repository defines the interface for event assignment storage
type Repository interface {
	// Upsert merges a into the document a.ID, creating it when absent
	Upsert(ctx context.Context, a *Assignment) error

	// ListInRange returns the user's assignments whose startDate lies in r
	ListInRange(ctx context.Context, userID string, r Range) ([]*Assignment, error)

	// ListSeries returns every applyToSeries assignment of the user
	ListSeries(ctx context.Context, userID string) ([]*Assignment, error)
}
