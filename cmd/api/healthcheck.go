package main

import (
	"net/http"
	"strings"
)

func (app *application) HealthCheck(w http.ResponseWriter, r *http.Request) {
	err := app.writeJSON(w, http.StatusOK, envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.Env,
			"version":     app.config.version,
			"store":       app.config.DB.Driver,
			"media":       app.config.Media.Backend,
		},
		"cors_info": map[string]string{
			"trusted_origins": strings.Join(app.config.CORS.TrustedOrigins, " | "),
		},
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
