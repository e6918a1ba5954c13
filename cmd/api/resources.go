package main

import (
	"DiningApi/internal/data"
	"DiningApi/internal/gateway"
	"DiningApi/internal/validator"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// resourceHandlers serves the REST surface of one resource collection through its gateway.
type resourceHandlers[T data.Resource[T]] struct {
	app     *application
	gateway *gateway.Gateway[T]
}

func newResourceHandlers[T data.Resource[T]](app *application, gw *gateway.Gateway[T]) resourceHandlers[T] {
	return resourceHandlers[T]{app: app, gateway: gw}
}

func (h resourceHandlers[T]) mount(router chi.Router) {
	router.Get("/", h.List)
	router.Post("/", h.Create)
	router.Get("/pageable", h.GetPage)
	router.Get("/hateoas/{id}", h.GetHateoas)
	router.Get("/{id}", h.Get)
	router.Put("/{id}", h.Update)
	router.Delete("/{id}", h.Delete)
}

// respondErr maps a gateway outcome to a response: absence is a 404, anything else a 500.
func (h resourceHandlers[T]) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		h.app.notFoundResponse(w, r)
	default:
		h.app.serverErrorResponse(w, r, err)
	}
}

func (h resourceHandlers[T]) List(w http.ResponseWriter, r *http.Request) {
	started, err := writeJSONSeq(w, h.gateway.FindAll(r.Context()))
	if err != nil {
		if !started {
			h.app.serverErrorResponse(w, r, err)
			return
		}
		h.app.logError(r, err)
	}
}

func (h resourceHandlers[T]) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resource, err := h.gateway.FindByID(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	err = h.app.writeJSON(w, http.StatusOK, resource, nil)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
	}
}

func (h resourceHandlers[T]) Create(w http.ResponseWriter, r *http.Request) {
	var input T

	err := h.app.readJSON(w, r, &input)
	if err != nil {
		h.app.badRequestResponse(w, r, err)
		return
	}

	saved, err := h.gateway.Save(r.Context(), input)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", h.app.baseURL(r)+strings.TrimSuffix(r.URL.Path, "/")+"/"+saved.ResourceID())

	err = h.app.writeJSON(w, http.StatusCreated, saved, headers)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
	}
}

func (h resourceHandlers[T]) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input T
	err := h.app.readJSON(w, r, &input)
	if err != nil {
		h.app.badRequestResponse(w, r, err)
		return
	}

	updated, err := h.gateway.Update(r.Context(), id, input)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	err = h.app.writeJSON(w, http.StatusOK, updated, nil)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
	}
}

func (h resourceHandlers[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.gateway.Delete(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h resourceHandlers[T]) GetHateoas(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	linked, err := h.gateway.GetHateoasByID(r.Context(), h.app.baseURL(r), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	err = h.app.writeJSON(w, http.StatusOK, linked, nil)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
	}
}

func (h resourceHandlers[T]) GetPage(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	v := validator.New()

	filters := data.Filters{
		Page:     h.app.readInt(qs, "page", data.DefaultPage, v),
		PageSize: h.app.readInt(qs, "size", data.DefaultPageSize, v),
	}
	if !v.Valid() {
		h.app.invalidQueryResponse(w, r, v.Errors)
		return
	}

	page, err := h.gateway.GetPage(r.Context(), filters)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	err = h.app.writeJSON(w, http.StatusOK, page, nil)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
	}
}
