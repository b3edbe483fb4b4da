package reports

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fleetservis/backend/src/models"
)

func record(amount, expense float64, category string, date time.Time) models.TransactionRecord {
	rec := models.TransactionRecord{
		Amount:          amount,
		TransactionDate: date,
	}
	if expense != 0 {
		rec.Expense = sql.NullFloat64{Float64: expense, Valid: true}
	}
	if category != "" {
		rec.CategoryName = sql.NullString{String: category, Valid: true}
	}
	return rec
}

// -- Summarize tests --

func TestSummarize_Totals(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	records := []models.TransactionRecord{
		record(100, 30, "Bakım", date),
		record(200, 50, "Lastik", date),
	}

	c := NewProfitCalculator()
	summary := c.Summarize(records)

	assert.Equal(t, 300.0, summary.TotalRevenue)
	assert.Equal(t, 80.0, summary.TotalExpense)
	assert.Equal(t, 220.0, summary.NetProfit)
	assert.Equal(t, 73.33, summary.ProfitMargin)
	assert.Equal(t, 2, summary.TransactionCount)
	assert.Equal(t, 150.0, summary.AverageTransaction)
}

func TestSummarize_Empty(t *testing.T) {
	c := NewProfitCalculator()
	summary := c.Summarize(nil)

	assert.Equal(t, 0.0, summary.TotalRevenue)
	assert.Equal(t, 0.0, summary.ProfitMargin)
	assert.Equal(t, 0.0, summary.AverageTransaction)
	assert.Equal(t, 0, summary.TransactionCount)
}

func TestSummarize_ZeroRevenueMarginStaysZero(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	records := []models.TransactionRecord{record(0, 40, "", date)}

	summary := NewProfitCalculator().Summarize(records)

	assert.Equal(t, -40.0, summary.NetProfit)
	assert.Equal(t, 0.0, summary.ProfitMargin)
}

func TestSummarizeRevenue_CountsOnlyPositiveAmounts(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	records := []models.TransactionRecord{
		record(100, 0, "", date),
		record(0, 25, "", date),
		record(50, 0, "", date),
	}

	summary := NewProfitCalculator().SummarizeRevenue(records)

	assert.Equal(t, 150.0, summary.TotalRevenue)
	assert.Equal(t, 2, summary.TransactionCount)
	assert.Equal(t, 75.0, summary.AverageTransaction)
}

func TestBasicAnalysisOf_AveragesOverTurnover(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	records := []models.TransactionRecord{
		record(100, 30, "", date),
		record(200, 50, "", date),
	}

	analysis := NewProfitCalculator().BasicAnalysisOf(records)

	assert.Equal(t, 300.0, analysis.TotalRevenue)
	assert.Equal(t, 80.0, analysis.TotalExpense)
	assert.Equal(t, 220.0, analysis.NetProfit)
	// (300 + 80) / 2
	assert.Equal(t, 190.0, analysis.AverageTransaction)
}

// -- Breakdown tests --

func TestCategoryBreakdown_InsertionOrderAndShares(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	records := []models.TransactionRecord{
		record(100, 20, "Bakım", date),
		record(300, 50, "Lastik", date),
		record(100, 10, "Bakım", date),
	}

	entries := NewProfitCalculator().CategoryBreakdown(records)

	require.Len(t, entries, 2)
	assert.Equal(t, "Bakım", entries[0].Name)
	assert.Equal(t, 200.0, entries[0].Revenue)
	assert.Equal(t, 30.0, entries[0].Expense)
	assert.Equal(t, 170.0, entries[0].Profit)
	assert.Equal(t, 2, entries[0].TransactionCount)
	assert.Equal(t, "40.00", entries[0].Percentage)
	assert.Equal(t, "Lastik", entries[1].Name)
	assert.Equal(t, "60.00", entries[1].Percentage)
}

func TestCategoryBreakdown_UnspecifiedLabel(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	records := []models.TransactionRecord{record(100, 0, "", date)}

	entries := NewProfitCalculator().CategoryBreakdown(records)

	require.Len(t, entries, 1)
	assert.Equal(t, "Kategori Belirtilmemiş", entries[0].Name)
}

func TestCategoryBreakdown_ZeroTotalPercentage(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	records := []models.TransactionRecord{record(0, 40, "Bakım", date)}

	entries := NewProfitCalculator().CategoryBreakdown(records)

	require.Len(t, entries, 1)
	assert.Equal(t, "0.00", entries[0].Percentage)
}

func TestCategoryAnalysis_OrderedByProfit(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	records := []models.TransactionRecord{
		record(100, 80, "Yıkama", date),
		record(500, 100, "Kaporta", date),
		record(200, 50, "Bakım", date),
	}

	entries := NewProfitCalculator().CategoryAnalysis(records)

	require.Len(t, entries, 3)
	assert.Equal(t, "Kaporta", entries[0].Name)
	assert.Equal(t, "Bakım", entries[1].Name)
	assert.Equal(t, "Yıkama", entries[2].Name)
}

func TestPersonnelAnalysis_IncludesAverage(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	rec1 := record(100, 0, "", date)
	rec1.PersonnelName = sql.NullString{String: "Ahmet", Valid: true}
	rec2 := record(200, 0, "", date)
	rec2.PersonnelName = sql.NullString{String: "Ahmet", Valid: true}

	entries := NewProfitCalculator().PersonnelAnalysis([]models.TransactionRecord{rec1, rec2})

	require.Len(t, entries, 1)
	assert.Equal(t, "Ahmet", entries[0].Name)
	assert.Equal(t, 150.0, entries[0].AverageTransaction)
}

func TestPersonnelAnalysis_AverageCountsExpenseOnlyRecords(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	rec1 := record(100, 0, "", date)
	rec1.PersonnelName = sql.NullString{String: "Ahmet", Valid: true}
	rec2 := record(0, 50, "", date)
	rec2.PersonnelName = sql.NullString{String: "Ahmet", Valid: true}

	entries := NewProfitCalculator().PersonnelAnalysis([]models.TransactionRecord{rec1, rec2})

	require.Len(t, entries, 1)
	assert.Equal(t, 100.0, entries[0].Revenue)
	assert.Equal(t, 50.0, entries[0].Expense)
	assert.Equal(t, 2, entries[0].TransactionCount)
	// Turnover 100 + 50 over two records.
	assert.Equal(t, 75.0, entries[0].AverageTransaction)
}

// -- Trend and monthly tests --

func TestDailyTrend_BucketsByBusinessLocalDay(t *testing.T) {
	// 22:30 UTC on the 19th is already the 20th in Turkey.
	lateEvening := time.Date(2024, 7, 19, 22, 30, 0, 0, time.UTC)
	morning := time.Date(2024, 7, 20, 8, 0, 0, 0, time.UTC)
	previousDay := time.Date(2024, 7, 19, 10, 0, 0, 0, time.UTC)
	records := []models.TransactionRecord{
		record(100, 10, "", morning),
		record(50, 0, "", lateEvening),
		record(70, 20, "", previousDay),
	}

	points := NewProfitCalculator().DailyTrend(records)

	require.Len(t, points, 2)
	assert.Equal(t, "2024-07-19", points[0].Date)
	assert.Equal(t, 70.0, points[0].Revenue)
	assert.Equal(t, "2024-07-20", points[1].Date)
	assert.Equal(t, "Cumartesi", points[1].DayName)
	assert.Equal(t, 150.0, points[1].Revenue)
	assert.Equal(t, 140.0, points[1].Profit)
	assert.Equal(t, 2, points[1].TransactionCount)
}

func TestMonthlyBreakdown_TwelveZeroFilledEntries(t *testing.T) {
	entries := NewProfitCalculator().MonthlyBreakdown(nil)

	require.Len(t, entries, 12)
	assert.Equal(t, 1, entries[0].Month)
	assert.Equal(t, "Ocak", entries[0].MonthName)
	assert.Equal(t, 12, entries[11].Month)
	assert.Equal(t, "Aralık", entries[11].MonthName)
	for _, e := range entries {
		assert.Equal(t, 0.0, e.Revenue)
		assert.Equal(t, 0, e.TransactionCount)
	}
}

func TestMonthlyBreakdown_PrefersRecordMonth(t *testing.T) {
	rec := record(100, 20, "", time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC))
	rec.Month = 3

	entries := NewProfitCalculator().MonthlyBreakdown([]models.TransactionRecord{rec})

	assert.Equal(t, 100.0, entries[2].Revenue)
	assert.Equal(t, 0.0, entries[6].Revenue)
}

func TestMonthlyBreakdown_DerivesMonthFromLocalDate(t *testing.T) {
	// 22:00 UTC on July 31st is August 1st in Turkey.
	rec := record(100, 0, "", time.Date(2024, 7, 31, 22, 0, 0, 0, time.UTC))

	entries := NewProfitCalculator().MonthlyBreakdown([]models.TransactionRecord{rec})

	assert.Equal(t, 0.0, entries[6].Revenue)
	assert.Equal(t, 100.0, entries[7].Revenue)
}

// -- Revenue breakdown tests --

func TestDailyRevenueBreakdown_CountsExpenseOnlyRecords(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	expenseDay := time.Date(2024, 7, 21, 10, 0, 0, 0, time.UTC)
	records := []models.TransactionRecord{
		record(100, 0, "", date),
		record(0, 30, "", date),
		record(0, 45, "", expenseDay),
	}

	buckets := NewProfitCalculator().DailyRevenueBreakdown(records)

	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-07-20", buckets[0].Date)
	assert.Equal(t, 100.0, buckets[0].Revenue)
	assert.Equal(t, 2, buckets[0].TransactionCount)
	// A day with only expenses still gets its bucket.
	assert.Equal(t, "2024-07-21", buckets[1].Date)
	assert.Equal(t, 0.0, buckets[1].Revenue)
	assert.Equal(t, 1, buckets[1].TransactionCount)
}

func TestWeeklyRevenueBreakdown_WeekOfYear(t *testing.T) {
	records := []models.TransactionRecord{
		record(100, 0, "", time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)),
		record(50, 0, "", time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)),
		record(25, 0, "", time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)),
	}

	buckets := NewProfitCalculator().WeeklyRevenueBreakdown(records)

	require.Len(t, buckets, 2)
	assert.Equal(t, 1, buckets[0].Week)
	assert.Equal(t, 125.0, buckets[0].Revenue)
	assert.Equal(t, 2, buckets[1].Week)
	assert.Equal(t, 50.0, buckets[1].Revenue)
}

func TestCategoryRevenueBreakdown_OrderedByRevenue(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	records := []models.TransactionRecord{
		record(100, 0, "Bakım", date),
		record(300, 0, "Lastik", date),
		record(0, 40, "Kaporta", date),
	}

	entries := NewProfitCalculator().CategoryRevenueBreakdown(records)

	require.Len(t, entries, 3)
	assert.Equal(t, "Lastik", entries[0].Name)
	assert.Equal(t, "75.00", entries[0].Percentage)
	assert.Equal(t, "Bakım", entries[1].Name)
	assert.Equal(t, "25.00", entries[1].Percentage)
	// The expense-only category keeps its row, counted but revenue-free.
	assert.Equal(t, "Kaporta", entries[2].Name)
	assert.Equal(t, 0.0, entries[2].Revenue)
	assert.Equal(t, 1, entries[2].TransactionCount)
	assert.Equal(t, "0.00", entries[2].Percentage)
}

func TestMonthlyRevenueBreakdown_CountsAllTransactions(t *testing.T) {
	records := []models.TransactionRecord{
		record(100, 0, "", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)),
		record(0, 60, "", time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)),
	}

	entries := NewProfitCalculator().MonthlyRevenueBreakdown(records)

	require.Len(t, entries, 12)
	assert.Equal(t, 100.0, entries[2].Revenue)
	assert.Equal(t, 2, entries[2].TransactionCount)
}

func TestWeeklyRevenueBreakdown_CountsExpenseOnlyRecords(t *testing.T) {
	records := []models.TransactionRecord{
		record(0, 80, "", time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)),
	}

	buckets := NewProfitCalculator().WeeklyRevenueBreakdown(records)

	require.Len(t, buckets, 1)
	assert.Equal(t, 1, buckets[0].Week)
	assert.Equal(t, 0.0, buckets[0].Revenue)
	assert.Equal(t, 1, buckets[0].TransactionCount)
}

// -- Top transactions and stats tests --

func TestTopProfitableTransactions_OrderAndCap(t *testing.T) {
	date := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	records := make([]models.TransactionRecord, 0, 25)
	for i := 0; i < 25; i++ {
		rec := record(float64(100+i*10), 50, fmt.Sprintf("Kategori %d", i), date)
		rec.ID = int64(i + 1)
		records = append(records, rec)
	}

	rows := NewProfitCalculator().TopProfitableTransactions(records)

	require.Len(t, rows, 20)
	assert.Equal(t, int64(25), rows[0].ID)
	assert.Equal(t, 290.0, rows[0].NetEffect)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].NetEffect, rows[i].NetEffect)
	}
}

func TestGeneralStatsOf_DistinctCountsAndDateRange(t *testing.T) {
	rec1 := record(100, 20, "Bakım", time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC))
	rec1.VehiclePlate = sql.NullString{String: "34ABC123", Valid: true}
	rec2 := record(200, 0, "Bakım", time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC))
	rec2.VehiclePlate = sql.NullString{String: "06XYZ77", Valid: true}
	rec3 := record(50, 10, "Lastik", time.Date(2024, 7, 10, 10, 0, 0, 0, time.UTC))

	stats := NewProfitCalculator().GeneralStatsOf([]models.TransactionRecord{rec1, rec2, rec3})

	assert.Equal(t, 3, stats.TotalTransactions)
	assert.Equal(t, 350.0, stats.TotalRevenue)
	assert.Equal(t, 30.0, stats.TotalExpense)
	assert.Equal(t, 320.0, stats.NetProfit)
	assert.Equal(t, 3, stats.RevenueTransactionCount)
	assert.Equal(t, 2, stats.ExpenseTransactionCount)
	assert.Equal(t, 116.67, stats.AverageRevenue)
	assert.Equal(t, 200.0, stats.MaxRevenue)
	assert.Equal(t, 15.0, stats.AverageExpense)
	assert.Equal(t, 20.0, stats.MaxExpense)
	assert.Equal(t, 2, stats.UniqueCategories)
	assert.Equal(t, 2, stats.UniqueVehicles)
	assert.Equal(t, 0, stats.UniquePersonnel)
	assert.Equal(t, "2024-07-01", stats.FirstDate)
	assert.Equal(t, "2024-07-15", stats.LastDate)
}
