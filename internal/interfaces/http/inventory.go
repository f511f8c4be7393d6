package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"household/internal/domain/inventory"
	"household/internal/realtime"
)

type InventoryHandler struct {
	service *inventory.Service
	hub     Broadcaster
	logger  *zap.Logger
}

func NewInventoryHandler(service *inventory.Service, hub Broadcaster, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{service: service, hub: orNop(hub), logger: orNopLogger(logger).Named("inventory")}
}

type CreateItemRequest struct {
	UserID     string   `json:"userId"`
	Name       string   `json:"name"`
	Quantity   *float64 `json:"quantity,omitempty"`
	Unit       string   `json:"unit"`
	Category   string   `json:"category"`
	ExpiryDate *string  `json:"expiryDate,omitempty"`
}

type UpdateItemRequest struct {
	Name       *string  `json:"name,omitempty"`
	Quantity   *float64 `json:"quantity,omitempty"`
	Unit       *string  `json:"unit,omitempty"`
	Category   *string  `json:"category,omitempty"`
	ExpiryDate *string  `json:"expiryDate,omitempty"`
}

type ItemListResponse struct {
	Items []*inventory.Item `json:"items"`
}

type ItemCreatedResponse struct {
	Success bool            `json:"success"`
	Item    *inventory.Item `json:"item"`
}

// HandleInventory serves POST /api/inventory
func (h *InventoryHandler) HandleInventory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreateItem(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleItemByID serves /api/inventory/{id}. GET reads {id} as the owning
// user; PUT and DELETE read it as the item.
func (h *InventoryHandler) HandleItemByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListItems(w, r)
	case http.MethodPut:
		h.handleUpdateItem(w, r)
	case http.MethodDelete:
		h.handleDeleteItem(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *InventoryHandler) handleListItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r, "id")
	if !ok {
		return
	}

	items, err := h.service.ListItems(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list inventory", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to fetch inventory", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ItemListResponse{Items: items})
}

func (h *InventoryHandler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("invalid create item body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID != "" && req.UserID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	params := inventory.CreateParams{
		UserID:     userID,
		Name:       req.Name,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Category:   req.Category,
		ExpiryDate: req.ExpiryDate,
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.CreateItem(r.Context(), params)
	if err != nil {
		h.writeError(w, "Failed to add item", userID, err)
		return
	}

	notify(h.hub, r, userID, realtime.InventoryUpdate{})
	writeJSON(w, http.StatusOK, ItemCreatedResponse{Success: true, Item: item})
}

func (h *InventoryHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("invalid update item body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := inventory.UpdateParams{
		Name:       req.Name,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Category:   req.Category,
		ExpiryDate: req.ExpiryDate,
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateItem(r.Context(), r.PathValue("id"), userID, params); err != nil {
		h.writeError(w, "Failed to update item", userID, err)
		return
	}

	notify(h.hub, r, userID, realtime.InventoryUpdate{})
	writeJSON(w, http.StatusOK, success)
}

func (h *InventoryHandler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), r.PathValue("id"), userID); err != nil {
		h.writeError(w, "Failed to delete item", userID, err)
		return
	}

	notify(h.hub, r, userID, realtime.InventoryUpdate{})
	writeJSON(w, http.StatusOK, success)
}

func (h *InventoryHandler) writeError(w http.ResponseWriter, msg, userID string, err error) {
	switch {
	case errors.Is(err, inventory.ErrItemNotFound):
		http.Error(w, "Item not found", http.StatusNotFound)
	case errors.Is(err, inventory.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		h.logger.Error(msg, zap.String("user_id", userID), zap.Error(err))
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
