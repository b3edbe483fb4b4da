package services

import (
	"context"

	"github.com/username/fleetservis/backend/src/models"
	"github.com/username/fleetservis/backend/src/reports"
)

// ReportService produces profit and revenue reports for a resolved period,
// optionally narrowed to a set of category IDs.
type ReportService interface {
	ProfitReport(ctx context.Context, period reports.Period, categoryIDs []int64) (*ProfitReport, error)
	RevenueReport(ctx context.Context, period reports.Period, categoryIDs []int64) (*RevenueReport, error)
	InvalidateCache()
}

// ActivityService records and lists audit trail entries. Recording is
// best-effort; a failed write must never fail the operation that caused it.
type ActivityService interface {
	Record(ctx context.Context, action, entityType string, entityID int64, userID int64, detail string)
	List(ctx context.Context, limit int) ([]models.Activity, error)
}
