package main

import (
	"DiningApi/internal/data"
	"DiningApi/internal/gateway"
	"expvar"
	"github.com/go-chi/chi/v5"
	"net/http"
)

func (app *application) routes() http.Handler {
	router := chi.NewRouter()

	// Router
	router.NotFound(app.notFoundResponse)
	router.MethodNotAllowed(app.methodNotAllowedRequest)

	// Middleware
	router.Use(app.metrics)
	router.Use(app.recoverPanic)
	router.Use(app.enableCORS)
	router.Use(app.rateLimit)

	// Healthcheck
	router.Get("/v1/healthcheck", app.HealthCheck)
	router.Method(http.MethodGet, "/v1/metrics", expvar.Handler())

	// Change feed for every resource
	router.Get("/watch", app.Watch(""))

	// Media written by the local backend
	if app.mediaHandler != nil {
		router.Handle("/media/*", http.StripPrefix("/media", app.mediaHandler))
	}

	// Customer Endpoints
	customers := newResourceHandlers[data.Customer](app, app.customers)
	router.Route("/customers", func(router chi.Router) {
		router.Get("/watch", app.Watch(app.customers.Kind()))

		router.Group(func(router chi.Router) {
			router.Use(app.compress)
			customers.mount(router)
			router.Post("/v1/upload/{id}", customers.Upload(gateway.TransferWithLookup))
			router.Post("/v2/upload/{id}", customers.Upload(gateway.LookupThenTransfer))
		})
	})

	// Dish Endpoints
	dishes := newResourceHandlers[data.Dish](app, app.dishes)
	router.Route("/dishes", func(router chi.Router) {
		router.Get("/watch", app.Watch(app.dishes.Kind()))

		router.Group(func(router chi.Router) {
			router.Use(app.compress)
			dishes.mount(router)
		})
	})

	return router
}
