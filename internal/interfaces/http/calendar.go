package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"household/internal/domain/calendar"
	"household/internal/realtime"
)

type CalendarHandler struct {
	service *calendar.Service
	hub     Broadcaster
	logger  *zap.Logger
}

func NewCalendarHandler(service *calendar.Service, hub Broadcaster, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{service: service, hub: orNop(hub), logger: orNopLogger(logger).Named("calendar")}
}

type AssignmentListResponse struct {
	Assignments []*calendar.Assignment `json:"assignments"`
}

// HandleAssignments serves /api/calendar/events/assignments/{userId}
func (h *CalendarHandler) HandleAssignments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListAssignments(w, r)
	case http.MethodPost:
		h.handleSaveAssignment(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CalendarHandler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r, "userId")
	if !ok {
		return
	}

	q := r.URL.Query()
	assignments, err := h.service.List(r.Context(), userID, calendar.NewRange(q.Get("timeMin"), q.Get("timeMax")))
	if err != nil {
		h.logger.Error("failed to fetch event assignments", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to fetch event assignments", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, AssignmentListResponse{Assignments: assignments})
}

func (h *CalendarHandler) handleSaveAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r, "userId")
	if !ok {
		return
	}

	var params calendar.SaveParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.logger.Debug("invalid assignment body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	params.UserID = userID

	if _, err := h.service.Save(r.Context(), params); err != nil {
		if errors.Is(err, calendar.ErrMissingEventRef) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to save event assignment", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to save event assignment", http.StatusInternalServerError)
		return
	}

	notify(h.hub, r, userID, realtime.CalendarUpdate{Action: realtime.ActionEventAssignmentUpdated})
	writeJSON(w, http.StatusOK, success)
}
