package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/fleetservis/backend/src/database"
)

// HealthHandler reports process liveness and database reachability.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := database.DB.PingContext(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
