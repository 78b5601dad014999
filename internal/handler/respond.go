package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jonathanaloya/cineflix/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeDenial renders an entitlement denial as a 403 with the
// machine-readable fields the client uses to pick the right upsell.
func writeDenial(w http.ResponseWriter, d *service.Denial) {
	payload := map[string]any{"message": d.Message}
	switch d.Reason {
	case service.ReasonDailyLimit, service.ReasonExpired:
		payload["requiresSubscription"] = true
	case service.ReasonSubRequired:
		payload["requiresSubscription"] = true
		payload["feature"] = d.Feature
	case service.ReasonUpgradeRequired:
		payload["requiredSubscription"] = d.RequiredTier
	}
	writeJSON(w, http.StatusForbidden, payload)
}
