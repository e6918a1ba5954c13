package main

import (
	"DiningApi/internal/data"
	"DiningApi/internal/gateway"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
)

var errMissingFilePart = errors.New("multipart body must contain a file part")

// Upload streams the "file" part of a multipart body into the gateway, which stores it and writes
// the resulting URL back to the resource.
func (h resourceHandlers[T]) Upload(strategy gateway.Strategy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		r.Body = http.MaxBytesReader(w, r.Body, h.app.config.Media.MaxUploadBytes)

		part, err := filePart(r)
		if err != nil {
			h.app.badRequestResponse(w, r, err)
			return
		}
		defer part.Close()

		updated, err := h.gateway.UploadAndUpdate(r.Context(), id,
			gateway.Upload{Filename: part.FileName(), Body: part}, strategy)
		if err != nil {
			var maxBytesError *http.MaxBytesError

			switch {
			case errors.Is(err, data.ErrRecordNotFound):
				h.app.notFoundResponse(w, r)
			case errors.As(err, &maxBytesError):
				h.app.badRequestResponse(w, r,
					fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit))
			default:
				h.app.serverErrorResponse(w, r, err)
			}
			return
		}

		err = h.app.writeJSON(w, http.StatusOK, updated, nil)
		if err != nil {
			h.app.serverErrorResponse(w, r, err)
		}
	}
}

// filePart returns the first part named "file" without buffering the parts before it.
func filePart(r *http.Request) (*multipart.Part, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errMissingFilePart
		}
		if err != nil {
			return nil, err
		}

		if part.FormName() == "file" {
			return part, nil
		}
		_ = part.Close()
	}
}
