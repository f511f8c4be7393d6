package meal

import "context"

// Repository defines the interface for meal plan storage
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Meal, error)

	// GetByID returns nil, nil when the meal does not exist
	GetByID(ctx context.Context, id string) (*Meal, error)

	ListByUserID(ctx context.Context, userID string, filter ListFilter) ([]*Meal, error)

	Update(ctx context.Context, id string, params UpdateParams) error

	Delete(ctx context.Context, id string) error
}
