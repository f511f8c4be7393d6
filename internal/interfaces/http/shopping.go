package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"household/internal/domain/shopping"
	"household/internal/realtime"
)

type ShoppingHandler struct {
	service *shopping.Service
	hub     Broadcaster
	logger  *zap.Logger
}

func NewShoppingHandler(service *shopping.Service, hub Broadcaster, logger *zap.Logger) *ShoppingHandler {
	return &ShoppingHandler{service: service, hub: orNop(hub), logger: orNopLogger(logger).Named("shopping")}
}

type CreateEntryRequest struct {
	UserID   string   `json:"userId"`
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit"`
}

type UpdateEntryRequest struct {
	Name      *string  `json:"name,omitempty"`
	Quantity  *float64 `json:"quantity,omitempty"`
	Unit      *string  `json:"unit,omitempty"`
	Purchased *bool    `json:"purchased,omitempty"`
}

type EntryListResponse struct {
	Items []*shopping.Entry `json:"items"`
}

type EntryCreatedResponse struct {
	Success bool            `json:"success"`
	Item    *shopping.Entry `json:"item"`
}

type AutoListResponse struct {
	Items []shopping.CombinedEntry `json:"items"`
}

// HandleShopping serves POST /api/inventory/shopping
func (h *ShoppingHandler) HandleShopping(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreateEntry(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleEntryByID serves /api/inventory/shopping/{id}. GET reads {id} as the
// owning user; PUT and DELETE read it as the entry.
func (h *ShoppingHandler) HandleEntryByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListEntries(w, r)
	case http.MethodPut:
		h.handleUpdateEntry(w, r)
	case http.MethodDelete:
		h.handleDeleteEntry(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleAutoList serves GET /api/inventory/shopping/auto/{userId}?days=N
func (h *ShoppingHandler) HandleAutoList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := pathUser(w, r, "userId")
	if !ok {
		return
	}

	days := h.service.DefaultDays()
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			days = n
		}
	}

	items, err := h.service.AutoList(r.Context(), userID, days)
	if err != nil {
		h.logger.Error("failed to build auto shopping list", zap.String("user_id", userID), zap.Int("days", days), zap.Error(err))
		http.Error(w, "Failed to build auto shopping list", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, AutoListResponse{Items: items})
}

func (h *ShoppingHandler) handleListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.service.ListEntries(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list shopping entries", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to fetch shopping list", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, EntryListResponse{Items: entries})
}

func (h *ShoppingHandler) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("invalid create entry body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID != "" && req.UserID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	params := shopping.CreateEntryParams{
		UserID:   userID,
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), params)
	if err != nil {
		h.writeError(w, "Failed to add to shopping list", userID, err)
		return
	}

	notify(h.hub, r, userID, realtime.ShoppingUpdate{})
	writeJSON(w, http.StatusOK, EntryCreatedResponse{Success: true, Item: entry})
}

func (h *ShoppingHandler) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("invalid update entry body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := shopping.UpdateEntryParams{
		Name:      req.Name,
		Quantity:  req.Quantity,
		Unit:      req.Unit,
		Purchased: req.Purchased,
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateEntry(r.Context(), r.PathValue("id"), userID, params); err != nil {
		h.writeError(w, "Failed to update shopping list", userID, err)
		return
	}

	notify(h.hub, r, userID, realtime.ShoppingUpdate{})
	writeJSON(w, http.StatusOK, success)
}

func (h *ShoppingHandler) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(r.Context(), r.PathValue("id"), userID); err != nil {
		h.writeError(w, "Failed to delete from shopping list", userID, err)
		return
	}

	notify(h.hub, r, userID, realtime.ShoppingUpdate{})
	writeJSON(w, http.StatusOK, success)
}

func (h *ShoppingHandler) writeError(w http.ResponseWriter, msg, userID string, err error) {
	switch {
	case errors.Is(err, shopping.ErrEntryNotFound):
		http.Error(w, "Shopping list entry not found", http.StatusNotFound)
	case errors.Is(err, shopping.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		h.logger.Error(msg, zap.String("user_id", userID), zap.Error(err))
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
