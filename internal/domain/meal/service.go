package meal

import (
	"context"
	"errors"
)

// Service contains the business logic for the meal planner
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateMeal(ctx context.Context, params CreateParams) (*Meal, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Ingredients == nil {
		params.Ingredients = []Ingredient{}
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) ListMeals(ctx context.Context, userID string, filter ListFilter) ([]*Meal, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListByUserID(ctx, userID, filter)
}

// GetMeal retrieves a meal and verifies user ownership
func (s *Service) GetMeal(ctx context.Context, mealID, userID string) (*Meal, error) {
	m, err := s.repo.GetByID(ctx, mealID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMealNotFound
	}
	if m.UserID != userID {
		return nil, ErrForbidden
	}
	return m, nil
}

// UpdateMeal applies a partial update after the ownership check.
func (s *Service) UpdateMeal(ctx context.Context, mealID, userID string, params UpdateParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if _, err := s.GetMeal(ctx, mealID, userID); err != nil {
		return err
	}
	if params.IsEmpty() {
		return nil
	}
	return s.repo.Update(ctx, mealID, params)
}

func (s *Service) DeleteMeal(ctx context.Context, mealID, userID string) error {
	if _, err := s.GetMeal(ctx, mealID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, mealID)
}
