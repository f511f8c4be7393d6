package shopping

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household/internal/domain/inventory"
	"household/internal/domain/meal"
)

// MockRepository is a mock implementation of Repository interface
type MockRepository struct {
	CreateFunc          func(ctx context.Context, params CreateEntryParams) (*Entry, error)
	GetByIDFunc         func(ctx context.Context, id string) (*Entry, error)
	ListUnpurchasedFunc func(ctx context.Context, userID string) ([]*Entry, error)
	UpdateFunc          func(ctx context.Context, id string, params UpdateEntryParams) error
	DeleteFunc          func(ctx context.Context, id string) error
}

func (m *MockRepository) Create(ctx context.Context, params CreateEntryParams) (*Entry, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRepository) ListUnpurchased(ctx context.Context, userID string) ([]*Entry, error) {
	if m.ListUnpurchasedFunc != nil {
		return m.ListUnpurchasedFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) Update(ctx context.Context, id string, params UpdateEntryParams) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockMeals struct {
	listFunc func(ctx context.Context, userID string, filter meal.ListFilter) ([]*meal.Meal, error)
}

func (m *mockMeals) ListByUserID(ctx context.Context, userID string, filter meal.ListFilter) ([]*meal.Meal, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, filter)
	}
	return nil, nil
}

type mockPantry struct {
	listFunc func(ctx context.Context, userID string) ([]*inventory.Item, error)
}

func (m *mockPantry) ListByUserID(ctx context.Context, userID string) ([]*inventory.Item, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID)
	}
	return nil, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestWindow(t *testing.T) {
	now := time.Date(2026, 12, 29, 22, 15, 0, 0, time.Local)

	tests := []struct {
		name      string
		days      int
		wantStart string
		wantEnd   string
	}{
		{"single day", 1, "2026-12-29", "2026-12-29"},
		{"week crosses year", 7, "2026-12-29", "2027-01-04"},
		{"zero clamps to one", 0, "2026-12-29", "2026-12-29"},
		{"negative clamps to one", -3, "2026-12-29", "2026-12-29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Window(now, tt.days)
			assert.Equal(t, tt.wantStart, w.StartDate)
			assert.Equal(t, tt.wantEnd, w.EndDate)
		})
	}
}

func TestService_AutoList(t *testing.T) {
	var gotFilter meal.ListFilter
	in := pancakesInputs()

	svc := NewService(
		&MockRepository{ListUnpurchasedFunc: func(ctx context.Context, userID string) ([]*Entry, error) {
			return in.Manual, nil
		}},
		&mockMeals{listFunc: func(ctx context.Context, userID string, filter meal.ListFilter) ([]*meal.Meal, error) {
			gotFilter = filter
			return in.Meals, nil
		}},
		&mockPantry{listFunc: func(ctx context.Context, userID string) ([]*inventory.Item, error) {
			return in.Inventory, nil
		}},
		7,
	)
	svc.now = fixedClock(time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local))

	out, err := svc.AutoList(context.Background(), "u1", 7)
	require.NoError(t, err)

	assert.Equal(t, meal.ListFilter{StartDate: "2026-10-17", EndDate: "2026-10-23"}, gotFilter)
	require.Len(t, out, 2)
	assert.Equal(t, "combined-eggs|unit", out[0].ID)
	assert.Equal(t, 4.0, out[0].Quantity)
	assert.Equal(t, SourceMixed, out[0].Source)
	assert.Equal(t, "combined-flour|cups", out[1].ID)
	assert.Equal(t, 1.5, out[1].Quantity)
}

func TestService_AutoList_AnyFetchFailureFails(t *testing.T) {
	boom := errors.New("backend unavailable")

	tests := []struct {
		name   string
		repo   *MockRepository
		meals  *mockMeals
		pantry *mockPantry
	}{
		{
			name:   "meals",
			repo:   &MockRepository{},
			meals:  &mockMeals{listFunc: func(context.Context, string, meal.ListFilter) ([]*meal.Meal, error) { return nil, boom }},
			pantry: &mockPantry{},
		},
		{
			name:   "inventory",
			repo:   &MockRepository{},
			meals:  &mockMeals{},
			pantry: &mockPantry{listFunc: func(context.Context, string) ([]*inventory.Item, error) { return nil, boom }},
		},
		{
			name:   "manual",
			repo:   &MockRepository{ListUnpurchasedFunc: func(context.Context, string) ([]*Entry, error) { return nil, boom }},
			meals:  &mockMeals{},
			pantry: &mockPantry{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.repo, tt.meals, tt.pantry, 7)
			out, err := svc.AutoList(context.Background(), "u1", 7)
			require.ErrorIs(t, err, boom)
			assert.Nil(t, out)
		})
	}
}

func TestService_AutoList_RequiresUser(t *testing.T) {
	svc := NewService(&MockRepository{}, &mockMeals{}, &mockPantry{}, 7)
	_, err := svc.AutoList(context.Background(), "", 7)
	assert.Error(t, err)
}

func TestNewService_DefaultDays(t *testing.T) {
	assert.Equal(t, DefaultDays, NewService(&MockRepository{}, &mockMeals{}, &mockPantry{}, 0).DefaultDays())
	assert.Equal(t, 14, NewService(&MockRepository{}, &mockMeals{}, &mockPantry{}, 14).DefaultDays())
}

func TestService_CreateEntry(t *testing.T) {
	var got CreateEntryParams
	repo := &MockRepository{
		CreateFunc: func(ctx context.Context, params CreateEntryParams) (*Entry, error) {
			got = params
			return &Entry{ID: "s1", UserID: params.UserID, Name: params.Name, Quantity: *params.Quantity, Unit: params.Unit}, nil
		},
	}
	svc := NewService(repo, &mockMeals{}, &mockPantry{}, 7)

	e, err := svc.CreateEntry(context.Background(), CreateEntryParams{UserID: "u1", Name: "Milk"})
	require.NoError(t, err)
	assert.Equal(t, "s1", e.ID)
	require.NotNil(t, got.Quantity)
	assert.Equal(t, 1.0, *got.Quantity)
	assert.Equal(t, DefaultUnit, got.Unit)

	_, err = svc.CreateEntry(context.Background(), CreateEntryParams{UserID: "u1", Name: " "})
	assert.Error(t, err)

	_, err = svc.CreateEntry(context.Background(), CreateEntryParams{UserID: "u1", Name: "Milk", Quantity: qty(-1)})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestService_GetEntry_Ownership(t *testing.T) {
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*Entry, error) {
			if id == "missing" {
				return nil, nil
			}
			return &Entry{ID: id, UserID: "owner"}, nil
		},
	}
	svc := NewService(repo, &mockMeals{}, &mockPantry{}, 7)

	_, err := svc.GetEntry(context.Background(), "missing", "owner")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = svc.GetEntry(context.Background(), "s1", "intruder")
	assert.ErrorIs(t, err, ErrForbidden)

	e, err := svc.GetEntry(context.Background(), "s1", "owner")
	require.NoError(t, err)
	assert.Equal(t, "s1", e.ID)
}

func TestService_UpdateEntry(t *testing.T) {
	updated := false
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*Entry, error) {
			return &Entry{ID: id, UserID: "u1"}, nil
		},
		UpdateFunc: func(ctx context.Context, id string, params UpdateEntryParams) error {
			updated = true
			require.NotNil(t, params.Purchased)
			assert.True(t, *params.Purchased)
			return nil
		},
	}
	svc := NewService(repo, &mockMeals{}, &mockPantry{}, 7)

	require.NoError(t, svc.UpdateEntry(context.Background(), "s1", "u1", UpdateEntryParams{}))
	assert.False(t, updated, "empty update skips the store")

	purchased := true
	require.NoError(t, svc.UpdateEntry(context.Background(), "s1", "u1", UpdateEntryParams{Purchased: &purchased}))
	assert.True(t, updated)

	assert.ErrorIs(t, svc.UpdateEntry(context.Background(), "s1", "u2", UpdateEntryParams{Purchased: &purchased}), ErrForbidden)
}

func TestService_DeleteEntry(t *testing.T) {
	deleted := ""
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*Entry, error) {
			return &Entry{ID: id, UserID: "u1"}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := NewService(repo, &mockMeals{}, &mockPantry{}, 7)

	assert.ErrorIs(t, svc.DeleteEntry(context.Background(), "s1", "u2"), ErrForbidden)
	assert.Empty(t, deleted)

	require.NoError(t, svc.DeleteEntry(context.Background(), "s1", "u1"))
	assert.Equal(t, "s1", deleted)
}
