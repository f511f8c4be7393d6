package http

import (
	"context"
	"net/http"
	"sync"

	"household/internal/domain/calendar"
	"household/internal/domain/inventory"
	"household/internal/domain/meal"
	"household/internal/domain/shopping"
	"household/internal/realtime"
	"household/internal/shared/middleware"
)

// MockMealRepo implements meal.Repository for testing
type MockMealRepo struct {
	CreateFunc       func(ctx context.Context, params meal.CreateParams) (*meal.Meal, error)
	GetByIDFunc      func(ctx context.Context, id string) (*meal.Meal, error)
	ListByUserIDFunc func(ctx context.Context, userID string, filter meal.ListFilter) ([]*meal.Meal, error)
	UpdateFunc       func(ctx context.Context, id string, params meal.UpdateParams) error
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *MockMealRepo) Create(ctx context.Context, params meal.CreateParams) (*meal.Meal, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockMealRepo) GetByID(ctx context.Context, id string) (*meal.Meal, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockMealRepo) ListByUserID(ctx context.Context, userID string, filter meal.ListFilter) ([]*meal.Meal, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, filter)
	}
	return nil, nil
}

func (m *MockMealRepo) Update(ctx context.Context, id string, params meal.UpdateParams) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil
}

func (m *MockMealRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockItemRepo implements inventory.Repository for testing
type MockItemRepo struct {
	CreateFunc       func(ctx context.Context, params inventory.CreateParams) (*inventory.Item, error)
	GetByIDFunc      func(ctx context.Context, id string) (*inventory.Item, error)
	ListByUserIDFunc func(ctx context.Context, userID string) ([]*inventory.Item, error)
	UpdateFunc       func(ctx context.Context, id string, params inventory.UpdateParams) error
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *MockItemRepo) Create(ctx context.Context, params inventory.CreateParams) (*inventory.Item, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockItemRepo) GetByID(ctx context.Context, id string) (*inventory.Item, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockItemRepo) ListByUserID(ctx context.Context, userID string) ([]*inventory.Item, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockItemRepo) Update(ctx context.Context, id string, params inventory.UpdateParams) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil
}

func (m *MockItemRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockEntryRepo implements shopping.Repository for testing
type MockEntryRepo struct {
	CreateFunc          func(ctx context.Context, params shopping.CreateEntryParams) (*shopping.Entry, error)
	GetByIDFunc         func(ctx context.Context, id string) (*shopping.Entry, error)
	ListUnpurchasedFunc func(ctx context.Context, userID string) ([]*shopping.Entry, error)
	UpdateFunc          func(ctx context.Context, id string, params shopping.UpdateEntryParams) error
	DeleteFunc          func(ctx context.Context, id string) error
}

func (m *MockEntryRepo) Create(ctx context.Context, params shopping.CreateEntryParams) (*shopping.Entry, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockEntryRepo) GetByID(ctx context.Context, id string) (*shopping.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockEntryRepo) ListUnpurchased(ctx context.Context, userID string) ([]*shopping.Entry, error) {
	if m.ListUnpurchasedFunc != nil {
		return m.ListUnpurchasedFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockEntryRepo) Update(ctx context.Context, id string, params shopping.UpdateEntryParams) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil
}

func (m *MockEntryRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockAssignmentRepo implements calendar.Repository for testing
type MockAssignmentRepo struct {
	UpsertFunc      func(ctx context.Context, a *calendar.Assignment) error
	ListInRangeFunc func(ctx context.Context, userID string, r calendar.Range) ([]*calendar.Assignment, error)
	ListSeriesFunc  func(ctx context.Context, userID string) ([]*calendar.Assignment, error)
}

func (m *MockAssignmentRepo) Upsert(ctx context.Context, a *calendar.Assignment) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, a)
	}
	return nil
}

func (m *MockAssignmentRepo) ListInRange(ctx context.Context, userID string, r calendar.Range) ([]*calendar.Assignment, error) {
	if m.ListInRangeFunc != nil {
		return m.ListInRangeFunc(ctx, userID, r)
	}
	return nil, nil
}

func (m *MockAssignmentRepo) ListSeries(ctx context.Context, userID string) ([]*calendar.Assignment, error) {
	if m.ListSeriesFunc != nil {
		return m.ListSeriesFunc(ctx, userID)
	}
	return nil, nil
}

type broadcastCall struct {
	userID   string
	clientID string
	update   realtime.Update
}

// recordingHub implements Broadcaster and StatsSource.
type recordingHub struct {
	mu    sync.Mutex
	calls []broadcastCall
	stats realtime.Stats
}

func (h *recordingHub) BroadcastUpdate(userID, clientID string, u realtime.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, broadcastCall{userID: userID, clientID: clientID, update: u})
}

func (h *recordingHub) Stats() realtime.Stats { return h.stats }

func (h *recordingHub) Calls() []broadcastCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]broadcastCall(nil), h.calls...)
}

func withUser(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}
