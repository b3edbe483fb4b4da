package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/username/fleetservis/backend/src/logger"
	"github.com/username/fleetservis/backend/src/models"
	"github.com/username/fleetservis/backend/src/reports"
	"github.com/username/fleetservis/backend/src/services"
	"github.com/username/fleetservis/backend/src/utils"
)

type TransactionHandler struct {
	transactionService *services.TransactionService
	activityService    services.ActivityService
}

func NewTransactionHandler(transactionService *services.TransactionService, activityService services.ActivityService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		activityService:    activityService,
	}
}

type transactionRequest struct {
	Amount          float64  `json:"amount"`
	Expense         *float64 `json:"expense"`
	IsExpense       bool     `json:"is_expense"`
	Description     string   `json:"description"`
	TransactionDate string   `json:"transaction_date"`
	CategoryID      *int64   `json:"category_id"`
	VehicleID       *int64   `json:"vehicle_id"`
	PersonnelID     *int64   `json:"personnel_id"`
	PaymentMethod   *string  `json:"payment_method"`
	Status          string   `json:"status"`
}

// toModel parses the request into a Transaction. The date accepts either a
// full timestamp or a bare date, which is taken as local midnight.
func (req *transactionRequest) toModel() (*models.Transaction, error) {
	if req.TransactionDate == "" {
		return nil, errors.New("transaction_date is required")
	}
	date, err := time.ParseInLocation(reports.DateTimeLayout, req.TransactionDate, time.UTC)
	if err != nil {
		date, err = time.ParseInLocation(reports.DateLayout, req.TransactionDate, time.UTC)
		if err != nil {
			return nil, errors.New("transaction_date must be YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS")
		}
	}
	return &models.Transaction{
		Amount:          req.Amount,
		Expense:         req.Expense,
		IsExpense:       req.IsExpense,
		Description:     req.Description,
		TransactionDate: date,
		CategoryID:      req.CategoryID,
		VehicleID:       req.VehicleID,
		PersonnelID:     req.PersonnelID,
		PaymentMethod:   req.PaymentMethod,
		Status:          req.Status,
	}, nil
}

func (h *TransactionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	tx, err := req.toModel()
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.transactionService.Create(r.Context(), tx); err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Failed to create transaction", "error", err)
		utils.SendJSONError(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}

	userID, _ := GetUserIDFromContext(r.Context())
	h.activityService.Record(r.Context(), "create", "transaction", tx.ID, userID, tx.Description)
	utils.SendJSONSuccess(w, tx, http.StatusCreated)
}

func (h *TransactionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}
	tx, err := h.transactionService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to load transaction", "id", id, "error", err)
		utils.SendJSONError(w, "Failed to load transaction", http.StatusInternalServerError)
		return
	}
	utils.SendJSONSuccess(w, tx, http.StatusOK)
}

func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.TransactionFilter{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Status:    q.Get("status"),
	}
	filter.CategoryID, _ = strconv.ParseInt(q.Get("categoryId"), 10, 64)
	filter.VehicleID, _ = strconv.ParseInt(q.Get("vehicleId"), 10, 64)
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	transactions, err := h.transactionService.List(r.Context(), filter)
	if err != nil {
		logger.L.Error("Failed to list transactions", "error", err)
		utils.SendJSONError(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	utils.SendJSONSuccess(w, transactions, http.StatusOK)
}

func (h *TransactionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	tx, err := req.toModel()
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tx.ID = id
	if tx.Status == "" {
		tx.Status = services.StatusCompleted
	}
	if err := h.transactionService.Update(r.Context(), tx); err != nil {
		switch {
		case errors.Is(err, services.ErrTransactionNotFound):
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
		case errors.Is(err, services.ErrInvalidInput):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.L.Error("Failed to update transaction", "id", id, "error", err)
			utils.SendJSONError(w, "Failed to update transaction", http.StatusInternalServerError)
		}
		return
	}

	userID, _ := GetUserIDFromContext(r.Context())
	h.activityService.Record(r.Context(), "update", "transaction", id, userID, tx.Description)
	utils.SendJSONSuccess(w, tx, http.StatusOK)
}

func (h *TransactionHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.transactionService.UpdateStatus(r.Context(), id, body.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrTransactionNotFound):
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
		case errors.Is(err, services.ErrInvalidInput):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.L.Error("Failed to update transaction status", "id", id, "error", err)
			utils.SendJSONError(w, "Failed to update transaction status", http.StatusInternalServerError)
		}
		return
	}

	userID, _ := GetUserIDFromContext(r.Context())
	h.activityService.Record(r.Context(), "status", "transaction", id, userID, body.Status)
	utils.SendJSONSuccess(w, map[string]string{"status": body.Status}, http.StatusOK)
}

func (h *TransactionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}
	if err := h.transactionService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete transaction", "id", id, "error", err)
		utils.SendJSONError(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	userID, _ := GetUserIDFromContext(r.Context())
	h.activityService.Record(r.Context(), "delete", "transaction", id, userID, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.transactionService.Stats(r.Context())
	if err != nil {
		logger.L.Error("Failed to compute transaction stats", "error", err)
		utils.SendJSONError(w, "Failed to compute transaction stats", http.StatusInternalServerError)
		return
	}
	utils.SendJSONSuccess(w, stats, http.StatusOK)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
