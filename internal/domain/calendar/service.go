package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Save validates params and merges the assignment into its document.
func (s *Service) Save(ctx context.Context, params SaveParams) (*Assignment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	a := params.Assignment(s.now())
	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}
	return a, nil
}

// List returns the assignments in r together with every series assignment,
// each document at most once. Range results come first.
func (s *Service) List(ctx context.Context, userID string, r Range) ([]*Assignment, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}

	var inRange, series []*Assignment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inRange, err = s.repo.ListInRange(gctx, userID, r)
		return err
	})
	g.Go(func() error {
		var err error
		series, err = s.repo.ListSeries(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	seen := make(map[string]struct{}, len(inRange)+len(series))
	out := make([]*Assignment, 0, len(inRange)+len(series))
	for _, list := range [][]*Assignment{inRange, series} {
		for _, a := range list {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			out = append(out, a)
		}
	}
	return out, nil
}
