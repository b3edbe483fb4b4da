package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/fleetservis/backend/src/logger"
	"github.com/username/fleetservis/backend/src/models"
	"github.com/username/fleetservis/backend/src/reports"
)

// Transaction timestamps are stored as text in this layout, which keeps
// lexicographic and chronological order identical for range scans.
const txDateLayout = reports.DateTimeLayout

// StatusCancelled transactions carry no financial weight and are excluded
// from every report at the query level.
const StatusCancelled = "cancelled"

// ProfitReport is the data block of a profit report response. Which sections
// are populated depends on the period type.
type ProfitReport struct {
	Period     reports.Period           `json:"period"`
	Summary    reports.ProfitSummary    `json:"summary"`
	Breakdowns ProfitBreakdowns         `json:"breakdowns"`
	Analysis   *reports.BasicAnalysis   `json:"analysis,omitempty"`
	Top        []reports.TopTransaction `json:"topTransactions,omitempty"`
	Stats      *reports.GeneralStats    `json:"stats,omitempty"`
}

type ProfitBreakdowns struct {
	Category   []reports.BreakdownEntry `json:"category,omitempty"`
	Vehicle    []reports.BreakdownEntry `json:"vehicle,omitempty"`
	Personnel  []reports.BreakdownEntry `json:"personnel,omitempty"`
	DailyTrend []reports.TrendPoint     `json:"dailyTrend,omitempty"`
	Monthly    []reports.MonthEntry     `json:"monthly,omitempty"`
}

// RevenueReport is the data block of a revenue report response.
type RevenueReport struct {
	Period     reports.Period         `json:"period"`
	Summary    reports.RevenueSummary `json:"summary"`
	Breakdowns RevenueBreakdowns      `json:"breakdowns"`
}

type RevenueBreakdowns struct {
	Category []reports.CategoryRevenueEntry `json:"category,omitempty"`
	Daily    []reports.RevenueBucket        `json:"daily,omitempty"`
	Weekly   []reports.RevenueBucket        `json:"weekly,omitempty"`
	Monthly  []reports.MonthRevenueEntry    `json:"monthly,omitempty"`
}

type reportService struct {
	db         *sql.DB
	cache      *cache.Cache
	calculator *reports.ProfitCalculator
}

// NewReportService builds a ReportService backed by the given database and
// an in-memory result cache with the given TTL and cleanup interval.
func NewReportService(db *sql.DB, ttl, cleanup time.Duration) ReportService {
	return &reportService{
		db:         db,
		cache:      cache.New(ttl, cleanup),
		calculator: reports.NewProfitCalculator(),
	}
}

func (s *reportService) ProfitReport(ctx context.Context, period reports.Period, categoryIDs []int64) (*ProfitReport, error) {
	key := cacheKey("profit", period, categoryIDs)
	if cached, found := s.cache.Get(key); found {
		logger.L.Debug("profit report served from cache", "key", key)
		return cached.(*ProfitReport), nil
	}

	records, err := s.fetchRecords(ctx, period, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions for profit report: %w", err)
	}

	report := &ProfitReport{
		Period:  period,
		Summary: s.calculator.Summarize(records),
	}
	switch period.Type {
	case reports.PeriodDaily:
		report.Breakdowns.Category = s.calculator.CategoryBreakdown(records)
		report.Breakdowns.Vehicle = s.calculator.VehicleBreakdown(records)
		report.Breakdowns.Personnel = s.calculator.PersonnelAnalysis(records)
	case reports.PeriodWeekly:
		report.Breakdowns.Category = s.calculator.CategoryBreakdown(records)
		report.Breakdowns.Vehicle = s.calculator.VehicleAnalysis(records)
		report.Breakdowns.Personnel = s.calculator.PersonnelAnalysis(records)
		report.Breakdowns.DailyTrend = s.calculator.DailyTrend(records)
	case reports.PeriodMonthly:
		report.Breakdowns.Category = s.calculator.CategoryAnalysis(records)
		report.Breakdowns.Vehicle = s.calculator.VehicleAnalysis(records)
		report.Breakdowns.Personnel = s.calculator.PersonnelAnalysis(records)
		report.Breakdowns.DailyTrend = s.calculator.DailyTrend(records)
		analysis := s.calculator.BasicAnalysisOf(records)
		report.Analysis = &analysis
		stats := s.calculator.GeneralStatsOf(records)
		report.Stats = &stats
	case reports.PeriodYearly:
		report.Breakdowns.Monthly = s.calculator.MonthlyBreakdown(records)
		report.Breakdowns.Category = s.calculator.CategoryAnalysis(records)
		report.Breakdowns.Vehicle = s.calculator.VehicleAnalysis(records)
		report.Breakdowns.Personnel = s.calculator.PersonnelAnalysis(records)
	case reports.PeriodCustom:
		report.Breakdowns.Category = s.calculator.CategoryAnalysis(records)
		report.Breakdowns.Vehicle = s.calculator.VehicleAnalysis(records)
		report.Breakdowns.Personnel = s.calculator.PersonnelAnalysis(records)
		report.Breakdowns.DailyTrend = s.calculator.DailyTrend(records)
		report.Top = s.calculator.TopProfitableTransactions(records)
		stats := s.calculator.GeneralStatsOf(records)
		report.Stats = &stats
	}

	s.cache.Set(key, report, cache.DefaultExpiration)
	return report, nil
}

func (s *reportService) RevenueReport(ctx context.Context, period reports.Period, categoryIDs []int64) (*RevenueReport, error) {
	key := cacheKey("revenue", period, categoryIDs)
	if cached, found := s.cache.Get(key); found {
		logger.L.Debug("revenue report served from cache", "key", key)
		return cached.(*RevenueReport), nil
	}

	records, err := s.fetchRecords(ctx, period, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions for revenue report: %w", err)
	}

	report := &RevenueReport{
		Period:  period,
		Summary: s.calculator.SummarizeRevenue(records),
	}
	switch period.Type {
	case reports.PeriodDaily:
		report.Breakdowns.Category = s.calculator.CategoryRevenueBreakdown(records)
	case reports.PeriodWeekly, reports.PeriodMonthly, reports.PeriodCustom:
		report.Breakdowns.Category = s.calculator.CategoryRevenueBreakdown(records)
		report.Breakdowns.Daily = s.calculator.DailyRevenueBreakdown(records)
	case reports.PeriodYearly:
		report.Breakdowns.Category = s.calculator.CategoryRevenueBreakdown(records)
		report.Breakdowns.Weekly = s.calculator.WeeklyRevenueBreakdown(records)
		report.Breakdowns.Monthly = s.calculator.MonthlyRevenueBreakdown(records)
	}

	s.cache.Set(key, report, cache.DefaultExpiration)
	return report, nil
}

// InvalidateCache drops every cached report. Called after any transaction
// write so reports never serve stale aggregates.
func (s *reportService) InvalidateCache() {
	s.cache.Flush()
}

func cacheKey(kind string, period reports.Period, categoryIDs []int64) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte(':')
	b.WriteString(string(period.Type))
	b.WriteByte(':')
	b.WriteString(period.Start)
	b.WriteByte(':')
	b.WriteString(period.End)
	for _, id := range categoryIDs {
		fmt.Fprintf(&b, ":%d", id)
	}
	return b.String()
}

// fetchRecords loads the transactions inside the period bounds, joined with
// their category, vehicle and personnel names. Calendar-date bounds are
// widened to cover the full day.
func (s *reportService) fetchRecords(ctx context.Context, period reports.Period, categoryIDs []int64) ([]models.TransactionRecord, error) {
	start, end := period.Start, period.End
	if len(start) == len(reports.DateLayout) {
		start += "T00:00:00"
	}
	if len(end) == len(reports.DateLayout) {
		end += "T23:59:59"
	}

	query := `
	SELECT t.id, t.amount, t.expense, t.is_expense, t.description, t.transaction_date,
		t.category_id, c.name, t.vehicle_id, v.plate, t.personnel_id, p.full_name,
		t.payment_method, t.status, COALESCE(t.month, 0)
	FROM transactions t
	LEFT JOIN transaction_categories c ON c.id = t.category_id
	LEFT JOIN vehicles v ON v.id = t.vehicle_id
	LEFT JOIN personnel p ON p.id = t.personnel_id
	WHERE t.status != ? AND t.transaction_date >= ? AND t.transaction_date <= ?`

	args := []any{StatusCancelled, start, end}
	if len(categoryIDs) > 0 {
		query += " AND t.category_id IN (?" + strings.Repeat(",?", len(categoryIDs)-1) + ")"
		for _, id := range categoryIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY t.transaction_date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TransactionRecord
	for rows.Next() {
		var rec models.TransactionRecord
		var description sql.NullString
		var dateStr string
		if err := rows.Scan(
			&rec.ID, &rec.Amount, &rec.Expense, &rec.IsExpense, &description, &dateStr,
			&rec.CategoryID, &rec.CategoryName, &rec.VehicleID, &rec.VehiclePlate,
			&rec.PersonnelID, &rec.PersonnelName, &rec.PaymentMethod, &rec.Status, &rec.Month,
		); err != nil {
			return nil, err
		}
		rec.Description = description.String
		if parsed, err := time.ParseInLocation(txDateLayout, dateStr, time.UTC); err == nil {
			rec.TransactionDate = parsed
		} else {
			logger.L.Warn("transaction has unparseable date", "transaction_id", rec.ID, "date", dateStr)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
