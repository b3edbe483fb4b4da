package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/username/fleetservis/backend/src/logger"
	"github.com/username/fleetservis/backend/src/models"
	"github.com/username/fleetservis/backend/src/reports"
	"github.com/username/fleetservis/backend/src/security/validation"
)

// Transaction statuses. Everything except cancelled participates in reports.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	StartDate  string
	EndDate    string
	CategoryID int64
	VehicleID  int64
	Status     string
	Limit      int
	Offset     int
}

// TransactionService handles transaction persistence for the CRUD endpoints.
type TransactionService struct {
	db      *sql.DB
	reports ReportService
}

func NewTransactionService(db *sql.DB, reportService ReportService) *TransactionService {
	return &TransactionService{db: db, reports: reportService}
}

func validStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusPending, StatusCancelled:
		return true
	}
	return false
}

func (s *TransactionService) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.TransactionDate.IsZero() {
		return fmt.Errorf("%w: transaction_date is required", ErrInvalidInput)
	}
	if tx.Status == "" {
		tx.Status = StatusCompleted
	}
	if !validStatus(tx.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, tx.Status)
	}
	tx.Description = validation.StripUnprintable(tx.Description)

	res, err := s.db.ExecContext(ctx, `
	INSERT INTO transactions (amount, expense, is_expense, description, transaction_date,
		category_id, vehicle_id, personnel_id, payment_method, status, month)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.Amount, tx.Expense, tx.IsExpense, tx.Description,
		tx.TransactionDate.UTC().Format(txDateLayout),
		tx.CategoryID, tx.VehicleID, tx.PersonnelID, tx.PaymentMethod, tx.Status,
		businessMonth(tx.TransactionDate),
	)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tx.ID = id
	s.reports.InvalidateCache()
	return nil
}

func (s *TransactionService) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT id, amount, expense, is_expense, COALESCE(description, ''), transaction_date,
		category_id, vehicle_id, personnel_id, payment_method, status, created_at, updated_at
	FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

func (s *TransactionService) List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	query := `
	SELECT id, amount, expense, is_expense, COALESCE(description, ''), transaction_date,
		category_id, vehicle_id, personnel_id, payment_method, status, created_at, updated_at
	FROM transactions WHERE 1=1`
	var args []any
	if filter.StartDate != "" {
		query += " AND transaction_date >= ?"
		args = append(args, filter.StartDate+"T00:00:00")
	}
	if filter.EndDate != "" {
		query += " AND transaction_date <= ?"
		args = append(args, filter.EndDate+"T23:59:59")
	}
	if filter.CategoryID != 0 {
		query += " AND category_id = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.VehicleID != 0 {
		query += " AND vehicle_id = ?"
		args = append(args, filter.VehicleID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += " ORDER BY transaction_date DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransactionRows(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}

func (s *TransactionService) Update(ctx context.Context, tx *models.Transaction) error {
	if tx.TransactionDate.IsZero() {
		return fmt.Errorf("%w: transaction_date is required", ErrInvalidInput)
	}
	if !validStatus(tx.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, tx.Status)
	}
	tx.Description = validation.StripUnprintable(tx.Description)
	res, err := s.db.ExecContext(ctx, `
	UPDATE transactions
	SET amount = ?, expense = ?, is_expense = ?, description = ?, transaction_date = ?,
		category_id = ?, vehicle_id = ?, personnel_id = ?, payment_method = ?, status = ?,
		month = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`,
		tx.Amount, tx.Expense, tx.IsExpense, tx.Description,
		tx.TransactionDate.UTC().Format(txDateLayout),
		tx.CategoryID, tx.VehicleID, tx.PersonnelID, tx.PaymentMethod, tx.Status,
		businessMonth(tx.TransactionDate), tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction %d: %w", tx.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrTransactionNotFound
	}
	s.reports.InvalidateCache()
	return nil
}

// UpdateStatus changes only the lifecycle status of a transaction.
func (s *TransactionService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !validStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	res, err := s.db.ExecContext(ctx, `
	UPDATE transactions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating status of transaction %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrTransactionNotFound
	}
	s.reports.InvalidateCache()
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrTransactionNotFound
	}
	s.reports.InvalidateCache()
	return nil
}

// Stats summarizes all non-cancelled transactions regardless of period.
func (s *TransactionService) Stats(ctx context.Context) (*reports.GeneralStats, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT t.id, t.amount, t.expense, t.is_expense, COALESCE(t.description, ''), t.transaction_date,
		t.category_id, c.name, t.vehicle_id, v.plate, t.personnel_id, p.full_name,
		t.payment_method, t.status, COALESCE(t.month, 0)
	FROM transactions t
	LEFT JOIN transaction_categories c ON c.id = t.category_id
	LEFT JOIN vehicles v ON v.id = t.vehicle_id
	LEFT JOIN personnel p ON p.id = t.personnel_id
	WHERE t.status != ?`, StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TransactionRecord
	for rows.Next() {
		var rec models.TransactionRecord
		var dateStr string
		if err := rows.Scan(
			&rec.ID, &rec.Amount, &rec.Expense, &rec.IsExpense, &rec.Description, &dateStr,
			&rec.CategoryID, &rec.CategoryName, &rec.VehicleID, &rec.VehiclePlate,
			&rec.PersonnelID, &rec.PersonnelName, &rec.PaymentMethod, &rec.Status, &rec.Month,
		); err != nil {
			return nil, err
		}
		if parsed, err := time.ParseInLocation(txDateLayout, dateStr, time.UTC); err == nil {
			rec.TransactionDate = parsed
		} else {
			logger.L.Warn("transaction has unparseable date", "transaction_id", rec.ID, "date", dateStr)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	stats := reports.NewProfitCalculator().GeneralStatsOf(records)
	return &stats, nil
}

// businessMonth precomputes the Turkey-local month of a transaction so
// yearly reports do not have to rederive it per row.
func businessMonth(t time.Time) int {
	return int(t.UTC().Add(3 * time.Hour).Month())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row *sql.Row) (*models.Transaction, error) {
	tx, err := scanTransactionRows(row)
	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}
	return tx, err
}

func scanTransactionRows(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var dateStr string
	err := row.Scan(
		&tx.ID, &tx.Amount, &tx.Expense, &tx.IsExpense, &tx.Description, &dateStr,
		&tx.CategoryID, &tx.VehicleID, &tx.PersonnelID, &tx.PaymentMethod, &tx.Status,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// Tolerate both the canonical layout and a bare date from older rows.
	if parsed, perr := time.ParseInLocation(txDateLayout, dateStr, time.UTC); perr == nil {
		tx.TransactionDate = parsed
	} else if parsed, perr := time.ParseInLocation(reports.DateLayout, strings.SplitN(dateStr, "T", 2)[0], time.UTC); perr == nil {
		tx.TransactionDate = parsed
	}
	return &tx, nil
}
