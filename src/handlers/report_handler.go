package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/username/fleetservis/backend/src/logger"
	"github.com/username/fleetservis/backend/src/reports"
	"github.com/username/fleetservis/backend/src/services"
	"github.com/username/fleetservis/backend/src/utils"
)

// ReportHandler serves the profit and revenue report endpoints. Period
// parameters come in as query strings; an optional comma-separated
// "categories" parameter narrows a report to those category IDs.
type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) HandleDailyProfit(w http.ResponseWriter, r *http.Request) {
	period, err := reports.ResolveDaily(r.URL.Query().Get("date"))
	if err != nil {
		sendPeriodError(w, err)
		return
	}
	h.serveProfit(w, r, period)
}

func (h *ReportHandler) HandleWeeklyProfit(w http.ResponseWriter, r *http.Request) {
	year, week, err := yearWeekParams(r)
	if err != nil {
		sendPeriodError(w, err)
		return
	}
	h.serveProfit(w, r, reports.ResolveWeekly(year, week, time.Now().UTC()))
}

func (h *ReportHandler) HandleMonthlyProfit(w http.ResponseWriter, r *http.Request) {
	period, err := monthlyPeriod(r)
	if err != nil {
		sendPeriodError(w, err)
		return
	}
	h.serveProfit(w, r, period)
}

func (h *ReportHandler) HandleYearlyProfit(w http.ResponseWriter, r *http.Request) {
	period, err := yearlyPeriod(r)
	if err != nil {
		sendPeriodError(w, err)
		return
	}
	h.serveProfit(w, r, period)
}

func (h *ReportHandler) HandleCustomProfit(w http.ResponseWriter, r *http.Request) {
	period, err := reports.ResolveCustom(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		sendPeriodError(w, err)
		return
	}
	h.serveProfit(w, r, period)
}

func (h *ReportHandler) HandleDailyRevenue(w http.ResponseWriter, r *http.Request) {
	period, err := reports.ResolveDaily(r.URL.Query().Get("date"))
	if err != nil {
		sendPeriodError(w, err)
		return
	}
	h.serveRevenue(w, r, period)
}

func (h *ReportHandler) HandleWeeklyRevenue(w http.ResponseWriter, r *http.Request) {
	year, week, err := yearWeekParams(r)
	if err != nil {
		sendPeriodError(w, err)
		return
	}
	h.serveRevenue(w, r, reports.ResolveWeekly(year, week, time.Now().UTC()))
}

func (h *ReportHandler) HandleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	period, err := monthlyPeriod(r)
	if err != nil {
		sendPeriodError(w, err)
		return
	}
	h.serveRevenue(w, r, period)
}

func (h *ReportHandler) HandleYearlyRevenue(w http.ResponseWriter, r *http.Request) {
	period, err := yearlyPeriod(r)
	if err != nil {
		sendPeriodError(w, err)
		return
	}
	h.serveRevenue(w, r, period)
}

func (h *ReportHandler) HandleCustomRevenue(w http.ResponseWriter, r *http.Request) {
	period, err := reports.ResolveCustom(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		sendPeriodError(w, err)
		return
	}
	h.serveRevenue(w, r, period)
}

func (h *ReportHandler) serveProfit(w http.ResponseWriter, r *http.Request, period reports.Period) {
	categoryIDs, err := categoryParams(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid categories parameter", http.StatusBadRequest)
		return
	}
	report, err := h.reportService.ProfitReport(r.Context(), period, categoryIDs)
	if err != nil {
		logger.L.Error("Failed to build profit report", "periodType", period.Type, "error", err)
		utils.SendJSONError(w, "Failed to build profit report", http.StatusInternalServerError)
		return
	}
	writeReport(w, r, report)
}

func (h *ReportHandler) serveRevenue(w http.ResponseWriter, r *http.Request, period reports.Period) {
	categoryIDs, err := categoryParams(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid categories parameter", http.StatusBadRequest)
		return
	}
	report, err := h.reportService.RevenueReport(r.Context(), period, categoryIDs)
	if err != nil {
		logger.L.Error("Failed to build revenue report", "periodType", period.Type, "error", err)
		utils.SendJSONError(w, "Failed to build revenue report", http.StatusInternalServerError)
		return
	}
	writeReport(w, r, report)
}

// writeReport sends the report inside the success envelope, with an ETag so
// dashboard polling can short-circuit on 304.
func writeReport(w http.ResponseWriter, r *http.Request, report any) {
	if etag, err := utils.GenerateETag(report); err == nil {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	utils.SendJSONSuccess(w, report, http.StatusOK)
}

func sendPeriodError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, reports.ErrMissingParameter) || errors.Is(err, reports.ErrInvalidPeriod) {
		status = http.StatusBadRequest
	}
	utils.SendJSONError(w, err.Error(), status)
}

func yearWeekParams(r *http.Request) (int, int, error) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		return 0, 0, err
	}
	week, err := intParam(r, "week", 0)
	if err != nil {
		return 0, 0, err
	}
	return year, week, nil
}

func monthlyPeriod(r *http.Request) (reports.Period, error) {
	year, err := intParam(r, "year", time.Now().UTC().Year())
	if err != nil {
		return reports.Period{}, err
	}
	month, err := intParam(r, "month", 0)
	if err != nil {
		return reports.Period{}, err
	}
	return reports.ResolveMonthly(year, month)
}

func yearlyPeriod(r *http.Request) (reports.Period, error) {
	year, err := intParam(r, "year", time.Now().UTC().Year())
	if err != nil {
		return reports.Period{}, err
	}
	return reports.ResolveYearly(year)
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Join(reports.ErrInvalidPeriod, err)
	}
	return value, nil
}

func categoryParams(r *http.Request) ([]int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("categories"))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
