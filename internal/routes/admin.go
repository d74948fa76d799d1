package routes

import (
	"net/http"

	"github.com/nordmark/vidar/internal/middleware"
	"github.com/nordmark/vidar/internal/router"
)

// RegisterAdminRoutes registers the back-office routes.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	adm := r.Group(middleware.RequireAdmin)

	adm.Get("/admin/orders", deps.OrderHandler.List)
	adm.Get("/admin/orders/{id}", deps.OrderHandler.Get)
	adm.Put("/admin/orders/{id}", deps.OrderHandler.UpdateStatus)
	adm.Delete("/admin/orders/{id}", deps.OrderHandler.Delete)
}

// RegisterOpsRoutes registers health and metrics endpoints. They bypass the
// identity guards so probes and scrapers need no credentials.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle(http.MethodGet, "/metrics", deps.Metrics.Handler())
}
