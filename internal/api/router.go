package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "healthdeck/internal/api/context"
	"healthdeck/internal/api/handlers"
	"healthdeck/internal/api/middleware"
)

type Dependencies struct {
	WebhookHandler   *handlers.WebhookHandler
	EventsHandler    *handlers.EventsHandler
	DashboardHandler *handlers.DashboardHandler
	AlertsHandler    *handlers.AlertsHandler
	AuditHandler     *handlers.AuditHandler
	HealthHandler    *handlers.HealthHandler
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/", wrap(deps.HealthHandler.Home))
	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Webhook ingestion
	router.POST("/webhook/:source", chain(deps.WebhookHandler.Receive, middleware.RequestLog))

	// Read API consumed by dashboards
	router.GET("/api/summary", chain(deps.DashboardHandler.Summary, middleware.RequestLog, middleware.CORS))
	router.GET("/api/endpoints", chain(deps.DashboardHandler.Endpoints, middleware.RequestLog, middleware.CORS))
	router.GET("/api/endpoints/:endpoint_id", chain(deps.DashboardHandler.Endpoint, middleware.RequestLog, middleware.CORS))
	router.GET("/api/errors", chain(deps.DashboardHandler.Errors, middleware.RequestLog, middleware.CORS))
	router.GET("/api/customers", chain(deps.DashboardHandler.Customers, middleware.RequestLog, middleware.CORS))
	router.GET("/api/webhooks", chain(deps.DashboardHandler.Webhooks, middleware.RequestLog, middleware.CORS))
	router.GET("/api/trends", chain(deps.DashboardHandler.Trends, middleware.RequestLog, middleware.CORS))

	router.GET("/api/events", chain(deps.EventsHandler.List, middleware.RequestLog, middleware.CORS))
	router.GET("/api/events/:event_id", chain(deps.EventsHandler.Get, middleware.RequestLog, middleware.CORS))

	router.GET("/api/alerts", chain(deps.AlertsHandler.List, middleware.RequestLog, middleware.CORS))
	router.POST("/api/alerts/:alert_id/resolve", chain(deps.AlertsHandler.Resolve, middleware.RequestLog, middleware.CORS))

	router.GET("/api/audit", chain(deps.AuditHandler.List, middleware.RequestLog, middleware.CORS))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
