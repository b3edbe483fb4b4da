package models

import (
	"database/sql"
	"time"
)

// TransactionRecord is a single flat row as produced by the report queries:
// one transaction joined with its optional category, vehicle and personnel.
// Joined columns are nullable because the joins are LEFT JOINs.
type TransactionRecord struct {
	ID              int64
	Amount          float64
	Expense         sql.NullFloat64
	IsExpense       bool
	Description     string
	TransactionDate time.Time
	CategoryID      sql.NullInt64
	CategoryName    sql.NullString
	VehicleID       sql.NullInt64
	VehiclePlate    sql.NullString
	PersonnelID     sql.NullInt64
	PersonnelName   sql.NullString
	PaymentMethod   sql.NullString
	Status          string
	// Month is the business-local month (1-12) precomputed by the yearly
	// report query. 0 means the column was not selected.
	Month int
}

// Transaction is the persisted form used by the CRUD endpoints. Optional
// columns are pointers so they serialize as null rather than zero values.
type Transaction struct {
	ID              int64     `json:"id"`
	Amount          float64   `json:"amount"`
	Expense         *float64  `json:"expense"`
	IsExpense       bool      `json:"is_expense"`
	Description     string    `json:"description"`
	TransactionDate time.Time `json:"transaction_date"`
	CategoryID      *int64    `json:"category_id"`
	VehicleID       *int64    `json:"vehicle_id"`
	PersonnelID     *int64    `json:"personnel_id"`
	PaymentMethod   *string   `json:"payment_method"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Vehicle struct {
	ID           int64     `json:"id"`
	Plate        string    `json:"plate"`
	Brand        *string   `json:"brand"`
	Model        *string   `json:"model"`
	OwnerName    *string   `json:"owner_name"`
	OwnerPhone   *string   `json:"owner_phone"`
	CustomerType string    `json:"customer_type"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

type Personnel struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     *string   `json:"phone"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	HiredAt   *string   `json:"hired_at"`
	CreatedAt time.Time `json:"created_at"`
}

type TransactionCategory struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Activity is a single audit log row written after mutating operations.
type Activity struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   *int64    `json:"entity_id"`
	UserID     *int64    `json:"user_id"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}
