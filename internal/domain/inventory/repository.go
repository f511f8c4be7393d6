package inventory

import "context"

// Repository defines the interface for pantry storage
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Item, error)

	// GetByID returns nil, nil when the item does not exist
	GetByID(ctx context.Context, id string) (*Item, error)

	ListByUserID(ctx context.Context, userID string) ([]*Item, error)

	Update(ctx context.Context, id string, params UpdateParams) error

	Delete(ctx context.Context, id string) error
}
