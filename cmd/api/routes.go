package main

import (
	"net/http"

	"go.uber.org/zap"

	httphandlers "household/internal/interfaces/http"
	"household/internal/realtime"
	"household/internal/shared/config"
	"household/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)
	mux.HandleFunc("/api/health", httphandlers.HandleHealth)

	// Realtime sync. Identity comes from hello; a valid token pins it.
	mux.Handle(cfg.Realtime.Path, realtime.Handler(deps.Hub, realtime.HandlerConfig{
		AllowedOrigins: cfg.Realtime.AllowedOrigins,
		Authenticate:   middleware.Authenticator(deps.JWT),
	}))

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)

	mux.Handle("/api/ws/stats", authMiddleware(httphandlers.HandleHubStats(deps.Hub)))

	mux.Handle("/api/meals", authMiddleware(http.HandlerFunc(deps.MealHandler.HandleMeals)))
	mux.Handle("/api/meals/{id}", authMiddleware(http.HandlerFunc(deps.MealHandler.HandleMealByID)))

	mux.Handle("/api/inventory", authMiddleware(http.HandlerFunc(deps.InventoryHandler.HandleInventory)))
	mux.Handle("/api/inventory/{id}", authMiddleware(http.HandlerFunc(deps.InventoryHandler.HandleItemByID)))
	mux.Handle("/api/inventory/shopping", authMiddleware(http.HandlerFunc(deps.ShoppingHandler.HandleShopping)))
	mux.Handle("/api/inventory/shopping/{id}", authMiddleware(http.HandlerFunc(deps.ShoppingHandler.HandleEntryByID)))
	mux.Handle("/api/inventory/shopping/auto/{userId}", authMiddleware(http.HandlerFunc(deps.ShoppingHandler.HandleAutoList)))

	mux.Handle("/api/calendar/events/assignments/{userId}", authMiddleware(http.HandlerFunc(deps.CalendarHandler.HandleAssignments)))

	return withMiddleware(mux, cfg, logger)
}

// withMiddleware applies the global chain. otelhttp is the only HTTP
// instrumentation layer; it labels by method and status, never by path.
func withMiddleware(next http.Handler, cfg *config.Config, logger *zap.Logger) http.Handler {
	handler := middleware.Logging(logger)(middleware.CORS(cfg.Server.AllowedHosts)(next))
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		logger.Info("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
