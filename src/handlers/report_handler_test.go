package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fleetservis/backend/src/config"
	"github.com/username/fleetservis/backend/src/logger"
	"github.com/username/fleetservis/backend/src/reports"
	"github.com/username/fleetservis/backend/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{CSRFAuthKey: []byte("test-csrf-auth-key-32-bytes-long")}
	m.Run()
}

// stubReportService records the period it was called with and returns canned
// reports, so handler tests cover only parameter handling and response shape.
type stubReportService struct {
	lastPeriod     reports.Period
	lastCategories []int64
	err            error
}

func (s *stubReportService) ProfitReport(ctx context.Context, period reports.Period, categoryIDs []int64) (*services.ProfitReport, error) {
	s.lastPeriod = period
	s.lastCategories = categoryIDs
	if s.err != nil {
		return nil, s.err
	}
	return &services.ProfitReport{Period: period}, nil
}

func (s *stubReportService) RevenueReport(ctx context.Context, period reports.Period, categoryIDs []int64) (*services.RevenueReport, error) {
	s.lastPeriod = period
	s.lastCategories = categoryIDs
	if s.err != nil {
		return nil, s.err
	}
	return &services.RevenueReport{Period: period}, nil
}

func (s *stubReportService) InvalidateCache() {}

func newTestReportHandler(t *testing.T) (*ReportHandler, *stubReportService) {
	t.Helper()
	stub := &stubReportService{}
	return NewReportHandler(stub), stub
}

// -- Profit endpoint tests --

func TestHandleDailyProfit_Success(t *testing.T) {
	h, stub := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/profit/daily?date=2024-07-20", nil)
	rec := httptest.NewRecorder()

	h.HandleDailyProfit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("ETag"))
	assert.Equal(t, reports.PeriodDaily, stub.lastPeriod.Type)
	assert.Equal(t, "2024-07-19T21:00:00", stub.lastPeriod.Start)
	assert.Equal(t, "2024-07-20T20:59:59", stub.lastPeriod.End)

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
}

func TestHandleDailyProfit_MissingDate(t *testing.T) {
	h, _ := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/profit/daily", nil)
	rec := httptest.NewRecorder()

	h.HandleDailyProfit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDailyProfit_NotModified(t *testing.T) {
	h, _ := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/profit/daily?date=2024-07-20", nil)
	rec := httptest.NewRecorder()
	h.HandleDailyProfit(rec, req)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/profit/daily?date=2024-07-20", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.HandleDailyProfit(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestHandleWeeklyProfit_ExplicitWeek(t *testing.T) {
	h, stub := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/profit/weekly?year=2024&week=1", nil)
	rec := httptest.NewRecorder()

	h.HandleWeeklyProfit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-01", stub.lastPeriod.Start)
	assert.Equal(t, "2024-01-07", stub.lastPeriod.End)
}

func TestHandleWeeklyProfit_MalformedWeek(t *testing.T) {
	h, _ := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/profit/weekly?week=abc", nil)
	rec := httptest.NewRecorder()

	h.HandleWeeklyProfit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMonthlyProfit_MonthRequired(t *testing.T) {
	h, _ := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/profit/monthly?year=2024", nil)
	rec := httptest.NewRecorder()

	h.HandleMonthlyProfit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleYearlyProfit_OutOfRangeYear(t *testing.T) {
	h, _ := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/profit/yearly?year=1990", nil)
	rec := httptest.NewRecorder()

	h.HandleYearlyProfit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCustomProfit_EndBeforeStart(t *testing.T) {
	h, _ := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/profit/custom?startDate=2024-07-15&endDate=2024-07-01", nil)
	rec := httptest.NewRecorder()

	h.HandleCustomProfit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeProfit_CategoryFilter(t *testing.T) {
	h, stub := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/profit/daily?date=2024-07-20&categories=1,3,7", nil)
	rec := httptest.NewRecorder()

	h.HandleDailyProfit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{1, 3, 7}, stub.lastCategories)
}

func TestServeProfit_BadCategoryFilter(t *testing.T) {
	h, _ := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/profit/daily?date=2024-07-20&categories=1,x", nil)
	rec := httptest.NewRecorder()

	h.HandleDailyProfit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeProfit_ServiceFailure(t *testing.T) {
	h, stub := newTestReportHandler(t)
	stub.err = errors.New("db unavailable")
	req := httptest.NewRequest(http.MethodGet, "/api/reports/profit/daily?date=2024-07-20", nil)
	rec := httptest.NewRecorder()

	h.HandleDailyProfit(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// -- Revenue endpoint tests --

func TestHandleYearlyRevenue_Success(t *testing.T) {
	h, stub := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/revenue/yearly?year=2024", nil)
	rec := httptest.NewRecorder()

	h.HandleYearlyRevenue(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reports.PeriodYearly, stub.lastPeriod.Type)
	assert.Equal(t, "2024-01-01", stub.lastPeriod.Start)
	assert.Equal(t, "2024-12-31", stub.lastPeriod.End)
}

func TestHandleCustomRevenue_SingleDayExpansion(t *testing.T) {
	h, stub := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/revenue/custom?startDate=2024-07-20&endDate=2024-07-20", nil)
	rec := httptest.NewRecorder()

	h.HandleCustomRevenue(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reports.PeriodCustom, stub.lastPeriod.Type)
	assert.Equal(t, "2024-07-19T21:00:00", stub.lastPeriod.Start)
}
