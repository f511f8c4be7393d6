package shopping

import (
	"context"

	"household/internal/domain/inventory"
	"household/internal/domain/meal"
)

// Repository defines the interface for manual shopping list storage
type Repository interface {
	Create(ctx context.Context, params CreateEntryParams) (*Entry, error)

	// GetByID returns nil, nil when the entry does not exist
	GetByID(ctx context.Context, id string) (*Entry, error)

	// ListUnpurchased returns the user's entries with purchased=false
	ListUnpurchased(ctx context.Context, userID string) ([]*Entry, error)

	Update(ctx context.Context, id string, params UpdateEntryParams) error

	Delete(ctx context.Context, id string) error
}

// MealLister is the slice of the meal store the derived list reads.
type MealLister interface {
	ListByUserID(ctx context.Context, userID string, filter meal.ListFilter) ([]*meal.Meal, error)
}

// PantryLister is the slice of the inventory store the derived list reads.
type PantryLister interface {
	ListByUserID(ctx context.Context, userID string) ([]*inventory.Item, error)
}
