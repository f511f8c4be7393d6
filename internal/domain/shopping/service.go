package shopping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"household/internal/domain/inventory"
	"household/internal/domain/meal"
)

const DefaultDays = 7

var tracer = otel.Tracer("household/shopping")

// Service manages the manual list and derives the automatic one.
type Service struct {
	repo        Repository
	meals       MealLister
	pantry      PantryLister
	defaultDays int
	now         func() time.Time
}

func NewService(repo Repository, meals MealLister, pantry PantryLister, defaultDays int) *Service {
	if defaultDays < 1 {
		defaultDays = DefaultDays
	}
	return &Service{
		repo:        repo,
		meals:       meals,
		pantry:      pantry,
		defaultDays: defaultDays,
		now:         time.Now,
	}
}

func (s *Service) DefaultDays() int { return s.defaultDays }

// Window returns the inclusive local-date range [today, today+days-1].
// days below 1 is treated as 1.
func Window(now time.Time, days int) meal.ListFilter {
	if days < 1 {
		days = 1
	}
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, days-1)
	return meal.ListFilter{
		StartDate: start.Format(meal.DateLayout),
		EndDate:   end.Format(meal.DateLayout),
	}
}

// AutoList fetches meals in the window, the pantry and the unpurchased
// manual entries concurrently, then aggregates. Any failed fetch fails the
// whole call.
func (s *Service) AutoList(ctx context.Context, userID string, days int) ([]CombinedEntry, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	window := Window(s.now(), days)

	ctx, span := tracer.Start(ctx, "shopping.AutoList")
	defer span.End()
	span.SetAttributes(
		attribute.String("shopping.window_start", window.StartDate),
		attribute.String("shopping.window_end", window.EndDate),
	)

	var (
		meals  []*meal.Meal
		items  []*inventory.Item
		manual []*Entry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if meals, err = s.meals.ListByUserID(gctx, userID, window); err != nil {
			return fmt.Errorf("failed to fetch meals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if items, err = s.pantry.ListByUserID(gctx, userID); err != nil {
			return fmt.Errorf("failed to fetch inventory: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if manual, err = s.repo.ListUnpurchased(gctx, userID); err != nil {
			return fmt.Errorf("failed to fetch shopping list: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	out := Aggregate(Inputs{UserID: userID, Meals: meals, Inventory: items, Manual: manual})
	span.SetAttributes(attribute.Int("shopping.entries", len(out)))
	return out, nil
}

func (s *Service) ListEntries(ctx context.Context, userID string) ([]*Entry, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	return s.repo.ListUnpurchased(ctx, userID)
}

func (s *Service) CreateEntry(ctx context.Context, params CreateEntryParams) (*Entry, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params.WithDefaults())
}

// GetEntry retrieves an entry and verifies user ownership
func (s *Service) GetEntry(ctx context.Context, entryID, userID string) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEntryNotFound
	}
	if e.UserID != userID {
		return nil, ErrForbidden
	}
	return e, nil
}

func (s *Service) UpdateEntry(ctx context.Context, entryID, userID string, params UpdateEntryParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if _, err := s.GetEntry(ctx, entryID, userID); err != nil {
		return err
	}
	if params.IsEmpty() {
		return nil
	}
	return s.repo.Update(ctx, entryID, params)
}

func (s *Service) DeleteEntry(ctx context.Context, entryID, userID string) error {
	if _, err := s.GetEntry(ctx, entryID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, entryID)
}
