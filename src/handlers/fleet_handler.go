package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/fleetservis/backend/src/logger"
	"github.com/username/fleetservis/backend/src/models"
	"github.com/username/fleetservis/backend/src/services"
	"github.com/username/fleetservis/backend/src/utils"
)

// FleetHandler serves the vehicle, personnel and category registries.
type FleetHandler struct {
	fleetService    *services.FleetService
	activityService services.ActivityService
}

func NewFleetHandler(fleetService *services.FleetService, activityService services.ActivityService) *FleetHandler {
	return &FleetHandler{
		fleetService:    fleetService,
		activityService: activityService,
	}
}

func (h *FleetHandler) record(r *http.Request, action, entityType string, entityID int64, detail string) {
	userID, _ := GetUserIDFromContext(r.Context())
	h.activityService.Record(r.Context(), action, entityType, entityID, userID, detail)
}

func (h *FleetHandler) HandleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.fleetService.CreateVehicle(r.Context(), &vehicle); err != nil {
		sendFleetError(w, err, "Failed to create vehicle")
		return
	}
	h.record(r, "create", "vehicle", vehicle.ID, vehicle.Plate)
	utils.SendJSONSuccess(w, vehicle, http.StatusCreated)
}

func (h *FleetHandler) HandleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid vehicle id", http.StatusBadRequest)
		return
	}
	vehicle, err := h.fleetService.GetVehicle(r.Context(), id)
	if err != nil {
		sendFleetError(w, err, "Failed to load vehicle")
		return
	}
	utils.SendJSONSuccess(w, vehicle, http.StatusOK)
}

func (h *FleetHandler) HandleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.fleetService.ListVehicles(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		logger.L.Error("Failed to list vehicles", "error", err)
		utils.SendJSONError(w, "Failed to list vehicles", http.StatusInternalServerError)
		return
	}
	utils.SendJSONSuccess(w, vehicles, http.StatusOK)
}

func (h *FleetHandler) HandleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid vehicle id", http.StatusBadRequest)
		return
	}
	var vehicle models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	vehicle.ID = id
	if err := h.fleetService.UpdateVehicle(r.Context(), &vehicle); err != nil {
		sendFleetError(w, err, "Failed to update vehicle")
		return
	}
	h.record(r, "update", "vehicle", id, vehicle.Plate)
	utils.SendJSONSuccess(w, vehicle, http.StatusOK)
}

func (h *FleetHandler) HandleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid vehicle id", http.StatusBadRequest)
		return
	}
	if err := h.fleetService.DeleteVehicle(r.Context(), id); err != nil {
		sendFleetError(w, err, "Failed to delete vehicle")
		return
	}
	h.record(r, "delete", "vehicle", id, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *FleetHandler) HandleCreatePersonnel(w http.ResponseWriter, r *http.Request) {
	var person models.Personnel
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.fleetService.CreatePersonnel(r.Context(), &person); err != nil {
		sendFleetError(w, err, "Failed to create personnel")
		return
	}
	h.record(r, "create", "personnel", person.ID, person.FullName)
	utils.SendJSONSuccess(w, person, http.StatusCreated)
}

func (h *FleetHandler) HandleGetPersonnel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid personnel id", http.StatusBadRequest)
		return
	}
	person, err := h.fleetService.GetPersonnel(r.Context(), id)
	if err != nil {
		sendFleetError(w, err, "Failed to load personnel")
		return
	}
	utils.SendJSONSuccess(w, person, http.StatusOK)
}

func (h *FleetHandler) HandleListPersonnel(w http.ResponseWriter, r *http.Request) {
	people, err := h.fleetService.ListPersonnel(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		logger.L.Error("Failed to list personnel", "error", err)
		utils.SendJSONError(w, "Failed to list personnel", http.StatusInternalServerError)
		return
	}
	utils.SendJSONSuccess(w, people, http.StatusOK)
}

func (h *FleetHandler) HandleUpdatePersonnel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid personnel id", http.StatusBadRequest)
		return
	}
	var person models.Personnel
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	person.ID = id
	if err := h.fleetService.UpdatePersonnel(r.Context(), &person); err != nil {
		sendFleetError(w, err, "Failed to update personnel")
		return
	}
	h.record(r, "update", "personnel", id, person.FullName)
	utils.SendJSONSuccess(w, person, http.StatusOK)
}

func (h *FleetHandler) HandleDeletePersonnel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid personnel id", http.StatusBadRequest)
		return
	}
	if err := h.fleetService.DeletePersonnel(r.Context(), id); err != nil {
		sendFleetError(w, err, "Failed to delete personnel")
		return
	}
	h.record(r, "delete", "personnel", id, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *FleetHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var category models.TransactionCategory
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.fleetService.CreateCategory(r.Context(), &category); err != nil {
		sendFleetError(w, err, "Failed to create category")
		return
	}
	h.record(r, "create", "category", category.ID, category.Name)
	utils.SendJSONSuccess(w, category, http.StatusCreated)
}

func (h *FleetHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.fleetService.ListCategories(r.Context())
	if err != nil {
		logger.L.Error("Failed to list categories", "error", err)
		utils.SendJSONError(w, "Failed to list categories", http.StatusInternalServerError)
		return
	}
	utils.SendJSONSuccess(w, categories, http.StatusOK)
}

func (h *FleetHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid category id", http.StatusBadRequest)
		return
	}
	var category models.TransactionCategory
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	category.ID = id
	if err := h.fleetService.UpdateCategory(r.Context(), &category); err != nil {
		sendFleetError(w, err, "Failed to update category")
		return
	}
	h.record(r, "update", "category", id, category.Name)
	utils.SendJSONSuccess(w, category, http.StatusOK)
}

func (h *FleetHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid category id", http.StatusBadRequest)
		return
	}
	if err := h.fleetService.DeleteCategory(r.Context(), id); err != nil {
		sendFleetError(w, err, "Failed to delete category")
		return
	}
	h.record(r, "delete", "category", id, "")
	w.WriteHeader(http.StatusNoContent)
}

func sendFleetError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrVehicleNotFound),
		errors.Is(err, services.ErrPersonnelNotFound),
		errors.Is(err, services.ErrCategoryNotFound):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrDuplicatePlate),
		errors.Is(err, services.ErrDuplicateCategory):
		utils.SendJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrInvalidInput):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.L.Error(fallback, "error", err)
		utils.SendJSONError(w, fallback, http.StatusInternalServerError)
	}
}
