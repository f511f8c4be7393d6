package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household/internal/domain/calendar"
	"household/internal/realtime"
)

func TestHandleAssignments_Save(t *testing.T) {
	var stored *calendar.Assignment
	repo := &MockAssignmentRepo{
		UpsertFunc: func(ctx context.Context, a *calendar.Assignment) error {
			stored = a
			return nil
		},
	}
	hub := &recordingHub{}
	handler := NewCalendarHandler(calendar.NewService(repo), hub, nil)

	body := `{"eventId":"e1_20261020","calendarId":"family","recurringEventId":"e1","applyToSeries":true,
		"start":"2026-10-20T18:00:00Z","profileIds":["kid-1"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/calendar/events/assignments/u1", bytes.NewBufferString(body))
	req.SetPathValue("userId", "u1")
	req.Header.Set(SyncClientHeader, "laptop")
	rr := httptest.NewRecorder()
	handler.HandleAssignments(rr, withUser(req, "u1"))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	require.NotNil(t, stored)
	assert.Equal(t, "family__series__e1", stored.ID)
	assert.Equal(t, "u1", stored.UserID)
	assert.True(t, stored.ApplyToSeries)

	calls := hub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "u1", calls[0].userID)
	assert.Equal(t, "laptop", calls[0].clientID)
	assert.Equal(t, realtime.CalendarUpdate{Action: realtime.ActionEventAssignmentUpdated}, calls[0].update)
}

func TestHandleAssignments_SaveRejected(t *testing.T) {
	tests := []struct {
		name           string
		pathUser       string
		body           string
		upsertErr      error
		expectedStatus int
	}{
		{"Missing Calendar", "u1", `{"eventId":"e1"}`, nil, http.StatusBadRequest},
		{"Missing Event", "u1", `{"calendarId":"c"}`, nil, http.StatusBadRequest},
		{"Invalid JSON", "u1", `[`, nil, http.StatusBadRequest},
		{"Other User", "u2", `{"eventId":"e1","calendarId":"c"}`, nil, http.StatusForbidden},
		{"Store Error", "u1", `{"eventId":"e1","calendarId":"c"}`, errors.New("unavailable"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := &recordingHub{}
			repo := &MockAssignmentRepo{UpsertFunc: func(ctx context.Context, a *calendar.Assignment) error { return tt.upsertErr }}
			handler := NewCalendarHandler(calendar.NewService(repo), hub, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/calendar/events/assignments/"+tt.pathUser, bytes.NewBufferString(tt.body))
			req.SetPathValue("userId", tt.pathUser)
			rr := httptest.NewRecorder()
			handler.HandleAssignments(rr, withUser(req, "u1"))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Empty(t, hub.Calls(), "failed writes are not broadcast")
		})
	}
}

func TestHandleAssignments_List(t *testing.T) {
	var gotRange calendar.Range
	repo := &MockAssignmentRepo{
		ListInRangeFunc: func(ctx context.Context, userID string, r calendar.Range) ([]*calendar.Assignment, error) {
			gotRange = r
			return []*calendar.Assignment{{ID: "c__e1"}, {ID: "c__series__r1"}}, nil
		},
		ListSeriesFunc: func(ctx context.Context, userID string) ([]*calendar.Assignment, error) {
			return []*calendar.Assignment{{ID: "c__series__r1"}, {ID: "c__series__r2"}}, nil
		},
	}
	handler := NewCalendarHandler(calendar.NewService(repo), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/events/assignments/u1?timeMin=2026-10-01T00:00:00Z&timeMax=2026-10-31T00:00:00Z", nil)
	req.SetPathValue("userId", "u1")
	rr := httptest.NewRecorder()
	handler.HandleAssignments(rr, withUser(req, "u1"))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp AssignmentListResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp.Assignments, 3)
	assert.Equal(t, calendar.Range{StartDate: "2026-10-01", EndDate: "2026-10-31"}, gotRange)
}
