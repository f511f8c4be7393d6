package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"household/internal/domain/meal"
	"household/internal/realtime"
)

type MealHandler struct {
	service *meal.Service
	hub     Broadcaster
	logger  *zap.Logger
}

func NewMealHandler(service *meal.Service, hub Broadcaster, logger *zap.Logger) *MealHandler {
	return &MealHandler{service: service, hub: orNop(hub), logger: orNopLogger(logger).Named("meals")}
}

type CreateMealRequest struct {
	UserID      string            `json:"userId"`
	Date        string            `json:"date"`
	MealType    string            `json:"mealType"`
	Title       string            `json:"title"`
	Recipe      string            `json:"recipe"`
	Ingredients []meal.Ingredient `json:"ingredients"`
}

type UpdateMealRequest struct {
	Date        *string            `json:"date,omitempty"`
	MealType    *string            `json:"mealType,omitempty"`
	Title       *string            `json:"title,omitempty"`
	Recipe      *string            `json:"recipe,omitempty"`
	Ingredients *[]meal.Ingredient `json:"ingredients,omitempty"`
}

type MealListResponse struct {
	Meals []*meal.Meal `json:"meals"`
}

type MealCreatedResponse struct {
	Success bool       `json:"success"`
	Meal    *meal.Meal `json:"meal"`
}

// HandleMeals serves POST /api/meals
func (h *MealHandler) HandleMeals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreateMeal(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMealByID serves /api/meals/{id}. GET reads {id} as the owning user;
// PUT and DELETE read it as the meal.
func (h *MealHandler) HandleMealByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListMeals(w, r)
	case http.MethodPut:
		h.handleUpdateMeal(w, r)
	case http.MethodDelete:
		h.handleDeleteMeal(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MealHandler) handleListMeals(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r, "id")
	if !ok {
		return
	}

	filter := meal.ListFilter{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	meals, err := h.service.ListMeals(r.Context(), userID, filter)
	if err != nil {
		if errors.Is(err, meal.ErrInvalidDate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to list meals", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to fetch meal plans", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MealListResponse{Meals: meals})
}

func (h *MealHandler) handleCreateMeal(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req CreateMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("invalid create meal body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID != "" && req.UserID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	params := meal.CreateParams{
		UserID:      userID,
		Date:        req.Date,
		MealType:    req.MealType,
		Title:       req.Title,
		Recipe:      req.Recipe,
		Ingredients: req.Ingredients,
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := h.service.CreateMeal(r.Context(), params)
	if err != nil {
		h.writeError(w, "Failed to add meal", userID, err)
		return
	}

	notify(h.hub, r, userID, realtime.MealsUpdate{})
	writeJSON(w, http.StatusOK, MealCreatedResponse{Success: true, Meal: m})
}

func (h *MealHandler) handleUpdateMeal(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}
	mealID := r.PathValue("id")

	var req UpdateMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("invalid update meal body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := meal.UpdateParams{
		Date:        req.Date,
		MealType:    req.MealType,
		Title:       req.Title,
		Recipe:      req.Recipe,
		Ingredients: req.Ingredients,
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateMeal(r.Context(), mealID, userID, params); err != nil {
		h.writeError(w, "Failed to update meal", userID, err)
		return
	}

	notify(h.hub, r, userID, realtime.MealsUpdate{})
	writeJSON(w, http.StatusOK, success)
}

func (h *MealHandler) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteMeal(r.Context(), r.PathValue("id"), userID); err != nil {
		h.writeError(w, "Failed to delete meal", userID, err)
		return
	}

	notify(h.hub, r, userID, realtime.MealsUpdate{})
	writeJSON(w, http.StatusOK, success)
}

func (h *MealHandler) writeError(w http.ResponseWriter, msg, userID string, err error) {
	switch {
	case errors.Is(err, meal.ErrMealNotFound):
		http.Error(w, "Meal not found", http.StatusNotFound)
	case errors.Is(err, meal.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		h.logger.Error(msg, zap.String("user_id", userID), zap.Error(err))
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
