package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartgrid/internal/http/handlers"
)

// RouterDeps carries the handlers and middleware the router mounts.
type RouterDeps struct {
	Charging    *handlers.ChargingHandler
	Predictions *handlers.PredictionHandler
	Auth        *handlers.AuthHandler
	Status      *handlers.StatusHandler
	Metrics     http.Handler
	Middleware  []func(next http.Handler) http.Handler
}

// NewRouter mounts every route. Literal path segments are registered
// before the {id} wildcard at the same position so /day/weekday never
// resolves as an id.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	for _, mw := range deps.Middleware {
		r.Use(mw)
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.NotFound)

	r.Get("/", deps.Status.Root)
	r.Get("/api/status", deps.Status.Status)
	r.Method(http.MethodGet, "/metrics", deps.Metrics)

	r.Route("/api/charging", func(r chi.Router) {
		r.Get("/", deps.Charging.List)
		r.Post("/", deps.Charging.Create)
		r.Get("/day/{day}", deps.Charging.ByDay)
		r.Get("/high-kwh/{threshold}", deps.Charging.HighKwh)
		r.Get("/low-kwh/{threshold}", deps.Charging.LowKwh)
		r.Get("/stats/{day}", deps.Charging.DayStats)
		r.Get("/{id}", deps.Charging.Get)
		r.Put("/{id}", deps.Charging.Update)
		r.Delete("/{id}", deps.Charging.Delete)
	})

	r.Route("/api/predictions", func(r chi.Router) {
		r.Get("/", deps.Predictions.List)
		r.Post("/", deps.Predictions.Create)
		r.Get("/day/{day}", deps.Predictions.ByDay)
		r.Get("/high-kwh/{threshold}", deps.Predictions.HighKwh)
		r.Get("/low-kwh/{threshold}", deps.Predictions.LowKwh)
		r.Get("/power-range/{min}/{max}", deps.Predictions.PowerRange)
		r.Get("/stats/{day}", deps.Predictions.DayStats)
		r.Get("/accuracy/{day}", deps.Predictions.Accuracy)
		r.Get("/{id}", deps.Predictions.Get)
		r.Put("/{id}", deps.Predictions.Update)
		r.Delete("/{id}", deps.Predictions.Delete)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)
		r.Get("/", deps.Auth.List)
		r.Get("/active", deps.Auth.Active)
		r.Get("/{id}", deps.Auth.Get)
		r.Put("/{id}", deps.Auth.Update)
		r.Delete("/{id}", deps.Auth.Delete)
	})

	return r
}
