package handler

import (
	"net/http"
	"time"

	"github.com/jonathanaloya/cineflix/internal/db"
)

// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	mongo := "up"
	if err := db.Ping(r.Context()); err != nil {
		status = "degraded"
		mongo = "down"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": status,
		"mongo":  mongo,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
