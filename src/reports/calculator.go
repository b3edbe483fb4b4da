package reports

import (
	"sort"
	"time"

	"github.com/username/fleetservis/backend/src/logger"
	"github.com/username/fleetservis/backend/src/models"
	"github.com/username/fleetservis/backend/src/utils"
)

// Labels used when a transaction has no category, vehicle or personnel
// assigned. They surface as-is in report output.
const (
	UnspecifiedCategory  = "Kategori Belirtilmemiş"
	UnspecifiedVehicle   = "Araç Belirtilmemiş"
	UnspecifiedPersonnel = "Personel Belirtilmemiş"
)

const topTransactionLimit = 20

// ProfitSummary is the headline block of a profit report.
type ProfitSummary struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalExpense       float64 `json:"totalExpense"`
	NetProfit          float64 `json:"netProfit"`
	ProfitMargin       float64 `json:"profitMargin"`
	TransactionCount   int     `json:"transactionCount"`
	AverageTransaction float64 `json:"averageTransaction"`
}

// RevenueSummary is the headline block of a revenue report. The count covers
// only transactions that actually brought revenue in.
type RevenueSummary struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	TransactionCount   int     `json:"transactionCount"`
	AverageTransaction float64 `json:"averageTransaction"`
}

// BreakdownEntry is one group row in a category, vehicle or personnel
// breakdown. Percentage is the group's share of total revenue, pre-formatted
// with two decimals.
type BreakdownEntry struct {
	Name               string  `json:"name"`
	Revenue            float64 `json:"revenue"`
	Expense            float64 `json:"expense"`
	Profit             float64 `json:"profit"`
	ProfitMargin       float64 `json:"profitMargin"`
	TransactionCount   int     `json:"transactionCount"`
	Percentage         string  `json:"percentage"`
	AverageTransaction float64 `json:"averageTransaction,omitempty"`
}

// TrendPoint is one business-local day in a daily trend.
type TrendPoint struct {
	Date             string  `json:"date"`
	DayName          string  `json:"dayName"`
	Revenue          float64 `json:"revenue"`
	Expense          float64 `json:"expense"`
	Profit           float64 `json:"profit"`
	TransactionCount int     `json:"transactionCount"`
}

// MonthEntry is one calendar month in a yearly breakdown. All twelve months
// are always present, zero-filled when nothing happened.
type MonthEntry struct {
	Month            int     `json:"month"`
	MonthName        string  `json:"monthName"`
	Revenue          float64 `json:"revenue"`
	Expense          float64 `json:"expense"`
	Profit           float64 `json:"profit"`
	TransactionCount int     `json:"transactionCount"`
}

// RevenueBucket is one row of a daily or weekly revenue breakdown.
type RevenueBucket struct {
	Date             string  `json:"date,omitempty"`
	DayName          string  `json:"dayName,omitempty"`
	Week             int     `json:"week,omitempty"`
	Revenue          float64 `json:"revenue"`
	TransactionCount int     `json:"transactionCount"`
}

// MonthRevenueEntry is one calendar month in a yearly revenue breakdown.
type MonthRevenueEntry struct {
	Month            int     `json:"month"`
	MonthName        string  `json:"monthName"`
	Revenue          float64 `json:"revenue"`
	TransactionCount int     `json:"transactionCount"`
}

// CategoryRevenueEntry is one category row of a revenue breakdown, ordered by
// revenue when returned.
type CategoryRevenueEntry struct {
	Name             string  `json:"name"`
	Revenue          float64 `json:"revenue"`
	TransactionCount int     `json:"transactionCount"`
	Percentage       string  `json:"percentage"`
}

// TopTransaction is one row of the most profitable transactions list.
type TopTransaction struct {
	ID           int64   `json:"id"`
	Description  string  `json:"description"`
	Date         string  `json:"date"`
	CategoryName string  `json:"categoryName"`
	VehiclePlate string  `json:"vehiclePlate"`
	Amount       float64 `json:"amount"`
	Expense      float64 `json:"expense"`
	NetEffect    float64 `json:"netEffect"`
}

// GeneralStats describes the overall shape of a transaction set. Revenue
// figures count records with a positive amount, expense figures records with
// a positive expense.
type GeneralStats struct {
	TotalTransactions       int     `json:"totalTransactions"`
	TotalRevenue            float64 `json:"totalRevenue"`
	TotalExpense            float64 `json:"totalExpense"`
	NetProfit               float64 `json:"netProfit"`
	RevenueTransactionCount int     `json:"revenueTransactionCount"`
	ExpenseTransactionCount int     `json:"expenseTransactionCount"`
	AverageRevenue          float64 `json:"averageRevenue"`
	MaxRevenue              float64 `json:"maxRevenue"`
	AverageExpense          float64 `json:"averageExpense"`
	MaxExpense              float64 `json:"maxExpense"`
	UniqueCategories        int     `json:"uniqueCategories"`
	UniqueVehicles          int     `json:"uniqueVehicles"`
	UniquePersonnel         int     `json:"uniquePersonnel"`
	FirstDate               string  `json:"firstDate,omitempty"`
	LastDate                string  `json:"lastDate,omitempty"`
}

// BasicAnalysis is the compact summary used by the monthly profit report. Its
// average is taken over total turnover (revenue plus expense), not revenue
// alone.
type BasicAnalysis struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalExpense       float64 `json:"totalExpense"`
	NetProfit          float64 `json:"netProfit"`
	TransactionCount   int     `json:"transactionCount"`
	AverageTransaction float64 `json:"averageTransaction"`
}

// ProfitCalculator derives every profit and revenue aggregate from a slice of
// transaction records. It holds no state; all methods are pure over their
// input and leave it unmodified.
type ProfitCalculator struct{}

func NewProfitCalculator() *ProfitCalculator {
	return &ProfitCalculator{}
}

// RevenueOf returns the revenue side of a record. Amount is taken as revenue
// regardless of the record's expense flag.
func (c *ProfitCalculator) RevenueOf(rec models.TransactionRecord) float64 {
	return rec.Amount
}

// ExpenseOf returns the expense side of a record, zero when none is set.
func (c *ProfitCalculator) ExpenseOf(rec models.TransactionRecord) float64 {
	if rec.Expense.Valid {
		return rec.Expense.Float64
	}
	return 0
}

// Summarize computes the headline totals for a profit report.
func (c *ProfitCalculator) Summarize(records []models.TransactionRecord) ProfitSummary {
	var totalRevenue, totalExpense float64
	for _, rec := range records {
		totalRevenue += c.RevenueOf(rec)
		totalExpense += c.ExpenseOf(rec)
	}
	netProfit := totalRevenue - totalExpense
	s := ProfitSummary{
		TotalRevenue:     totalRevenue,
		TotalExpense:     totalExpense,
		NetProfit:        netProfit,
		TransactionCount: len(records),
	}
	if totalRevenue > 0 {
		s.ProfitMargin = utils.RoundFloat(netProfit/totalRevenue*100, 2)
	}
	if len(records) > 0 {
		s.AverageTransaction = utils.RoundFloat(totalRevenue/float64(len(records)), 2)
	}
	return s
}

// SummarizeRevenue computes the headline totals for a revenue report. Only
// records with a positive amount count as revenue transactions.
func (c *ProfitCalculator) SummarizeRevenue(records []models.TransactionRecord) RevenueSummary {
	var total float64
	count := 0
	for _, rec := range records {
		amount := c.RevenueOf(rec)
		total += amount
		if amount > 0 {
			count++
		}
	}
	s := RevenueSummary{
		TotalRevenue:     total,
		TransactionCount: count,
	}
	if count > 0 {
		s.AverageTransaction = utils.RoundFloat(total/float64(count), 2)
	}
	return s
}

// BasicAnalysisOf computes the compact period summary. The average divides
// combined revenue and expense volume by the record count.
func (c *ProfitCalculator) BasicAnalysisOf(records []models.TransactionRecord) BasicAnalysis {
	var totalRevenue, totalExpense float64
	for _, rec := range records {
		totalRevenue += c.RevenueOf(rec)
		totalExpense += c.ExpenseOf(rec)
	}
	a := BasicAnalysis{
		TotalRevenue:     totalRevenue,
		TotalExpense:     totalExpense,
		NetProfit:        totalRevenue - totalExpense,
		TransactionCount: len(records),
	}
	if len(records) > 0 {
		a.AverageTransaction = utils.RoundFloat((totalRevenue+totalExpense)/float64(len(records)), 2)
	}
	return a
}

// CategoryBreakdown groups records by category name in first-seen order.
func (c *ProfitCalculator) CategoryBreakdown(records []models.TransactionRecord) []BreakdownEntry {
	return c.breakdown(records, categoryName, false)
}

// VehicleBreakdown groups records by vehicle plate in first-seen order.
func (c *ProfitCalculator) VehicleBreakdown(records []models.TransactionRecord) []BreakdownEntry {
	return c.breakdown(records, vehicleName, false)
}

// PersonnelBreakdown groups records by personnel name in first-seen order.
func (c *ProfitCalculator) PersonnelBreakdown(records []models.TransactionRecord) []BreakdownEntry {
	return c.breakdown(records, personnelName, false)
}

// CategoryAnalysis is the category breakdown ordered by profit, highest first.
func (c *ProfitCalculator) CategoryAnalysis(records []models.TransactionRecord) []BreakdownEntry {
	return c.sortByProfit(c.breakdown(records, categoryName, false))
}

// VehicleAnalysis is the vehicle breakdown ordered by profit, highest first.
func (c *ProfitCalculator) VehicleAnalysis(records []models.TransactionRecord) []BreakdownEntry {
	return c.sortByProfit(c.breakdown(records, vehicleName, false))
}

// PersonnelAnalysis is the personnel breakdown ordered by profit, highest
// first, with a per-person average transaction value.
func (c *ProfitCalculator) PersonnelAnalysis(records []models.TransactionRecord) []BreakdownEntry {
	return c.sortByProfit(c.breakdown(records, personnelName, true))
}

func categoryName(rec models.TransactionRecord) string {
	if rec.CategoryName.Valid && rec.CategoryName.String != "" {
		return rec.CategoryName.String
	}
	return UnspecifiedCategory
}

func vehicleName(rec models.TransactionRecord) string {
	if rec.VehiclePlate.Valid && rec.VehiclePlate.String != "" {
		return rec.VehiclePlate.String
	}
	return UnspecifiedVehicle
}

func personnelName(rec models.TransactionRecord) string {
	if rec.PersonnelName.Valid && rec.PersonnelName.String != "" {
		return rec.PersonnelName.String
	}
	return UnspecifiedPersonnel
}

func (c *ProfitCalculator) breakdown(records []models.TransactionRecord, nameOf func(models.TransactionRecord) string, withAverage bool) []BreakdownEntry {
	var totalRevenue float64
	index := make(map[string]int)
	entries := make([]BreakdownEntry, 0)
	turnover := make([]float64, 0)
	for _, rec := range records {
		name := nameOf(rec)
		i, ok := index[name]
		if !ok {
			i = len(entries)
			index[name] = i
			entries = append(entries, BreakdownEntry{Name: name})
			turnover = append(turnover, 0)
		}
		revenue := c.RevenueOf(rec)
		expense := c.ExpenseOf(rec)
		entries[i].Revenue += revenue
		entries[i].Expense += expense
		entries[i].TransactionCount++
		totalRevenue += revenue
		// The per-group average is over turnover: a record counts its
		// revenue, or its expense when it brought no revenue in.
		if revenue != 0 {
			turnover[i] += revenue
		} else {
			turnover[i] += expense
		}
	}
	for i := range entries {
		e := &entries[i]
		e.Profit = e.Revenue - e.Expense
		if e.Revenue > 0 {
			e.ProfitMargin = utils.RoundFloat(e.Profit/e.Revenue*100, 2)
		}
		e.Percentage = utils.FormatPercentage(e.Revenue, totalRevenue)
		if withAverage && e.TransactionCount > 0 {
			e.AverageTransaction = utils.RoundFloat(turnover[i]/float64(e.TransactionCount), 2)
		}
	}
	return entries
}

func (c *ProfitCalculator) sortByProfit(entries []BreakdownEntry) []BreakdownEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Profit > entries[j].Profit
	})
	return entries
}

// DailyTrend buckets records by their business-local calendar day and returns
// the days in ascending order. A record stamped 2024-07-19T22:30:00Z falls on
// 2024-07-20 local time.
func (c *ProfitCalculator) DailyTrend(records []models.TransactionRecord) []TrendPoint {
	index := make(map[string]int)
	points := make([]TrendPoint, 0)
	for _, rec := range records {
		local := rec.TransactionDate.UTC().Add(turkeyOffset)
		date := local.Format(DateLayout)
		i, ok := index[date]
		if !ok {
			i = len(points)
			index[date] = i
			points = append(points, TrendPoint{
				Date:    date,
				DayName: dayNames[int(local.Weekday())],
			})
		}
		points[i].Revenue += c.RevenueOf(rec)
		points[i].Expense += c.ExpenseOf(rec)
		points[i].TransactionCount++
	}
	for i := range points {
		points[i].Profit = points[i].Revenue - points[i].Expense
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

// MonthlyBreakdown distributes records over the twelve calendar months. The
// record's own month field wins when set; otherwise the month is derived from
// the business-local transaction date. Records with neither are skipped.
func (c *ProfitCalculator) MonthlyBreakdown(records []models.TransactionRecord) []MonthEntry {
	entries := make([]MonthEntry, 12)
	for i := range entries {
		entries[i].Month = i + 1
		entries[i].MonthName = monthNames[i]
	}
	for _, rec := range records {
		month := c.monthOf(rec)
		if month == 0 {
			logger.L.Warn("transaction without month or date skipped in monthly breakdown", "transaction_id", rec.ID)
			continue
		}
		e := &entries[month-1]
		e.Revenue += c.RevenueOf(rec)
		e.Expense += c.ExpenseOf(rec)
		e.TransactionCount++
	}
	for i := range entries {
		entries[i].Profit = entries[i].Revenue - entries[i].Expense
	}
	return entries
}

func (c *ProfitCalculator) monthOf(rec models.TransactionRecord) int {
	if rec.Month >= 1 && rec.Month <= 12 {
		return rec.Month
	}
	if !rec.TransactionDate.IsZero() {
		return int(rec.TransactionDate.UTC().Add(turkeyOffset).Month())
	}
	return 0
}

// DailyRevenueBreakdown buckets revenue by business-local day, ascending.
// Every record counts toward its day, but only a positive amount adds
// revenue, so an expense-only day still shows up with zero revenue.
func (c *ProfitCalculator) DailyRevenueBreakdown(records []models.TransactionRecord) []RevenueBucket {
	index := make(map[string]int)
	buckets := make([]RevenueBucket, 0)
	for _, rec := range records {
		local := rec.TransactionDate.UTC().Add(turkeyOffset)
		date := local.Format(DateLayout)
		i, ok := index[date]
		if !ok {
			i = len(buckets)
			index[date] = i
			buckets = append(buckets, RevenueBucket{
				Date:    date,
				DayName: dayNames[int(local.Weekday())],
			})
		}
		buckets[i].TransactionCount++
		if amount := c.RevenueOf(rec); amount > 0 {
			buckets[i].Revenue += amount
		}
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})
	return buckets
}

// WeeklyRevenueBreakdown buckets revenue by week of year, where week one
// starts on January 1st of the record's business-local year. Every record
// counts toward its week; only a positive amount adds revenue.
func (c *ProfitCalculator) WeeklyRevenueBreakdown(records []models.TransactionRecord) []RevenueBucket {
	index := make(map[int]int)
	buckets := make([]RevenueBucket, 0)
	for _, rec := range records {
		local := rec.TransactionDate.UTC().Add(turkeyOffset)
		week := (local.YearDay()-1)/7 + 1
		i, ok := index[week]
		if !ok {
			i = len(buckets)
			index[week] = i
			buckets = append(buckets, RevenueBucket{Week: week})
		}
		buckets[i].TransactionCount++
		if amount := c.RevenueOf(rec); amount > 0 {
			buckets[i].Revenue += amount
		}
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Week < buckets[j].Week
	})
	return buckets
}

// MonthlyRevenueBreakdown distributes revenue over the twelve calendar
// months, zero-filled like MonthlyBreakdown.
func (c *ProfitCalculator) MonthlyRevenueBreakdown(records []models.TransactionRecord) []MonthRevenueEntry {
	entries := make([]MonthRevenueEntry, 12)
	for i := range entries {
		entries[i].Month = i + 1
		entries[i].MonthName = monthNames[i]
	}
	for _, rec := range records {
		month := c.monthOf(rec)
		if month == 0 {
			logger.L.Warn("transaction without month or date skipped in monthly revenue breakdown", "transaction_id", rec.ID)
			continue
		}
		entries[month-1].TransactionCount++
		if amount := c.RevenueOf(rec); amount > 0 {
			entries[month-1].Revenue += amount
		}
	}
	return entries
}

// CategoryRevenueBreakdown groups revenue by category, ordered by revenue,
// highest first. A category with only expense records still gets a row; its
// transactions are counted and its revenue stays zero.
func (c *ProfitCalculator) CategoryRevenueBreakdown(records []models.TransactionRecord) []CategoryRevenueEntry {
	var total float64
	index := make(map[string]int)
	entries := make([]CategoryRevenueEntry, 0)
	for _, rec := range records {
		name := categoryName(rec)
		i, ok := index[name]
		if !ok {
			i = len(entries)
			index[name] = i
			entries = append(entries, CategoryRevenueEntry{Name: name})
		}
		entries[i].TransactionCount++
		if amount := c.RevenueOf(rec); amount > 0 {
			entries[i].Revenue += amount
			total += amount
		}
	}
	for i := range entries {
		entries[i].Percentage = utils.FormatPercentage(entries[i].Revenue, total)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Revenue > entries[j].Revenue
	})
	return entries
}

// TopProfitableTransactions returns the transactions with the largest net
// effect (revenue minus expense), up to twenty rows.
func (c *ProfitCalculator) TopProfitableTransactions(records []models.TransactionRecord) []TopTransaction {
	rows := make([]TopTransaction, 0, len(records))
	for _, rec := range records {
		amount := c.RevenueOf(rec)
		expense := c.ExpenseOf(rec)
		row := TopTransaction{
			ID:          rec.ID,
			Description: rec.Description,
			Amount:      amount,
			Expense:     expense,
			NetEffect:   amount - expense,
		}
		if !rec.TransactionDate.IsZero() {
			row.Date = rec.TransactionDate.UTC().Add(turkeyOffset).Format(DateLayout)
		}
		if rec.CategoryName.Valid {
			row.CategoryName = rec.CategoryName.String
		}
		if rec.VehiclePlate.Valid {
			row.VehiclePlate = rec.VehiclePlate.String
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].NetEffect > rows[j].NetEffect
	})
	if len(rows) > topTransactionLimit {
		rows = rows[:topTransactionLimit]
	}
	return rows
}

// GeneralStatsOf summarizes the overall shape of a record set: totals,
// distinct groupings and the covered date range in business-local time.
func (c *ProfitCalculator) GeneralStatsOf(records []models.TransactionRecord) GeneralStats {
	stats := GeneralStats{TotalTransactions: len(records)}
	categories := make(map[string]struct{})
	vehicles := make(map[string]struct{})
	personnel := make(map[string]struct{})
	var first, last time.Time
	for _, rec := range records {
		revenue := c.RevenueOf(rec)
		expense := c.ExpenseOf(rec)
		stats.TotalRevenue += revenue
		stats.TotalExpense += expense
		if revenue > 0 {
			stats.RevenueTransactionCount++
			if revenue > stats.MaxRevenue {
				stats.MaxRevenue = revenue
			}
		}
		if expense > 0 {
			stats.ExpenseTransactionCount++
			if expense > stats.MaxExpense {
				stats.MaxExpense = expense
			}
		}
		if rec.CategoryName.Valid && rec.CategoryName.String != "" {
			categories[rec.CategoryName.String] = struct{}{}
		}
		if rec.VehiclePlate.Valid && rec.VehiclePlate.String != "" {
			vehicles[rec.VehiclePlate.String] = struct{}{}
		}
		if rec.PersonnelName.Valid && rec.PersonnelName.String != "" {
			personnel[rec.PersonnelName.String] = struct{}{}
		}
		if rec.TransactionDate.IsZero() {
			continue
		}
		if first.IsZero() || rec.TransactionDate.Before(first) {
			first = rec.TransactionDate
		}
		if last.IsZero() || rec.TransactionDate.After(last) {
			last = rec.TransactionDate
		}
	}
	stats.NetProfit = stats.TotalRevenue - stats.TotalExpense
	if stats.RevenueTransactionCount > 0 {
		stats.AverageRevenue = utils.RoundFloat(stats.TotalRevenue/float64(stats.RevenueTransactionCount), 2)
	}
	if stats.ExpenseTransactionCount > 0 {
		stats.AverageExpense = utils.RoundFloat(stats.TotalExpense/float64(stats.ExpenseTransactionCount), 2)
	}
	stats.UniqueCategories = len(categories)
	stats.UniqueVehicles = len(vehicles)
	stats.UniquePersonnel = len(personnel)
	if !first.IsZero() {
		stats.FirstDate = first.UTC().Add(turkeyOffset).Format(DateLayout)
		stats.LastDate = last.UTC().Add(turkeyOffset).Format(DateLayout)
	}
	return stats
}
