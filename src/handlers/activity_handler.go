package handlers

import (
	"net/http"
	"strconv"

	"github.com/username/fleetservis/backend/src/logger"
	"github.com/username/fleetservis/backend/src/services"
	"github.com/username/fleetservis/backend/src/utils"
)

type ActivityHandler struct {
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// HandleList returns the most recent audit entries, newest first.
func (h *ActivityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	activities, err := h.activityService.List(r.Context(), limit)
	if err != nil {
		logger.L.Error("Failed to list activities", "error", err)
		utils.SendJSONError(w, "Failed to list activities", http.StatusInternalServerError)
		return
	}
	utils.SendJSONSuccess(w, activities, http.StatusOK)
}
