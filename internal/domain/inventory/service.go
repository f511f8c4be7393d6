package inventory

import (
	"context"
	"errors"
)

// Service contains the business logic for the pantry
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateItem(ctx context.Context, params CreateParams) (*Item, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params.WithDefaults())
}

func (s *Service) ListItems(ctx context.Context, userID string) ([]*Item, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	return s.repo.ListByUserID(ctx, userID)
}

// GetItem retrieves an item and verifies user ownership
func (s *Service) GetItem(ctx context.Context, itemID, userID string) (*Item, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.UserID != userID {
		return nil, ErrForbidden
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, itemID, userID string, params UpdateParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if _, err := s.GetItem(ctx, itemID, userID); err != nil {
		return err
	}
	if params.IsEmpty() {
		return nil
	}
	return s.repo.Update(ctx, itemID, params)
}

func (s *Service) DeleteItem(ctx context.Context, itemID, userID string) error {
	if _, err := s.GetItem(ctx, itemID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, itemID)
}
