package main

import (
	"context"

	"go.uber.org/zap"

	"household/internal/domain/calendar"
	"household/internal/domain/inventory"
	"household/internal/domain/meal"
	"household/internal/domain/shopping"
	"household/internal/infrastructure/firebase"
	"household/internal/infrastructure/firestore"
	httphandlers "household/internal/interfaces/http"
	"household/internal/realtime"
	"household/internal/shared/auth"
	"household/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Firebase *firebase.Client
	Hub      *realtime.Hub

	// Handlers
	MealHandler      *httphandlers.MealHandler
	InventoryHandler *httphandlers.InventoryHandler
	ShoppingHandler  *httphandlers.ShoppingHandler
	CalendarHandler  *httphandlers.CalendarHandler

	// Auth
	JWT *auth.JWT
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	fb, err := firebase.NewClient(ctx, firebase.Config{
		ProjectID:       cfg.Firebase.ProjectID,
		CredentialsFile: cfg.Firebase.CredentialsFile,
	}, logger)
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(realtime.HubConfig{
		HeartbeatInterval: cfg.Realtime.HeartbeatInterval,
		SendQueueSize:     cfg.Realtime.SendQueueSize,
	}, logger)

	// Initialize repositories
	mealRepo := firestore.NewMealRepository(fb.Firestore())
	inventoryRepo := firestore.NewInventoryRepository(fb.Firestore())
	shoppingRepo := firestore.NewShoppingRepository(fb.Firestore())
	assignmentRepo := firestore.NewAssignmentRepository(fb.Firestore())

	// Initialize domain services
	mealService := meal.NewService(mealRepo)
	inventoryService := inventory.NewService(inventoryRepo)
	shoppingService := shopping.NewService(shoppingRepo, mealRepo, inventoryRepo, cfg.Shopping.DefaultDays)
	calendarService := calendar.NewService(assignmentRepo)

	return &Dependencies{
		Firebase:         fb,
		Hub:              hub,
		MealHandler:      httphandlers.NewMealHandler(mealService, hub, logger),
		InventoryHandler: httphandlers.NewInventoryHandler(inventoryService, hub, logger),
		ShoppingHandler:  httphandlers.NewShoppingHandler(shoppingService, hub, logger),
		CalendarHandler:  httphandlers.NewCalendarHandler(calendarService, hub, logger),
		JWT:              auth.NewJWT(cfg.JWT.Secret),
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Firebase != nil {
		d.Firebase.Close()
	}
}
