package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/username/fleetservis/backend/src/models"
	"github.com/username/fleetservis/backend/src/security/validation"
)

// FleetService handles the registry entities that transactions reference:
// vehicles, personnel and transaction categories.
type FleetService struct {
	db *sql.DB
}

func NewFleetService(db *sql.DB) *FleetService {
	return &FleetService{db: db}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *FleetService) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	v.Plate = validation.NormalizePlate(v.Plate)
	if v.Plate == "" {
		return fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}
	if v.CustomerType == "" {
		v.CustomerType = "individual"
	}
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO vehicles (plate, brand, model, owner_name, owner_phone, customer_type, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.Plate, v.Brand, v.Model, v.OwnerName, v.OwnerPhone, v.CustomerType, v.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicatePlate, v.Plate)
		}
		return fmt.Errorf("inserting vehicle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = id
	return nil
}

func (s *FleetService) GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT id, plate, brand, model, owner_name, owner_phone, customer_type, notes, created_at
	FROM vehicles WHERE id = ?`, id)
	var v models.Vehicle
	err := row.Scan(&v.ID, &v.Plate, &v.Brand, &v.Model, &v.OwnerName, &v.OwnerPhone, &v.CustomerType, &v.Notes, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVehicles returns vehicles ordered by plate. A non-empty search term
// matches against plate and owner name.
func (s *FleetService) ListVehicles(ctx context.Context, search string) ([]models.Vehicle, error) {
	query := `
	SELECT id, plate, brand, model, owner_name, owner_phone, customer_type, notes, created_at
	FROM vehicles`
	var args []any
	if search != "" {
		query += ` WHERE plate LIKE ? OR owner_name LIKE ?`
		like := "%" + strings.ToUpper(strings.TrimSpace(search)) + "%"
		args = append(args, like, "%"+strings.TrimSpace(search)+"%")
	}
	query += ` ORDER BY plate ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]models.Vehicle, 0)
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Plate, &v.Brand, &v.Model, &v.OwnerName, &v.OwnerPhone, &v.CustomerType, &v.Notes, &v.CreatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *FleetService) UpdateVehicle(ctx context.Context, v *models.Vehicle) error {
	v.Plate = validation.NormalizePlate(v.Plate)
	if v.Plate == "" {
		return fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}
	res, err := s.db.ExecContext(ctx, `
	UPDATE vehicles
	SET plate = ?, brand = ?, model = ?, owner_name = ?, owner_phone = ?, customer_type = ?, notes = ?
	WHERE id = ?`,
		v.Plate, v.Brand, v.Model, v.OwnerName, v.OwnerPhone, v.CustomerType, v.Notes, v.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicatePlate, v.Plate)
		}
		return fmt.Errorf("updating vehicle %d: %w", v.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

func (s *FleetService) DeleteVehicle(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting vehicle %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

func (s *FleetService) CreatePersonnel(ctx context.Context, p *models.Personnel) error {
	p.FullName = validation.NormalizeName(p.FullName)
	if p.FullName == "" {
		return fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}
	if p.Status == "" {
		p.Status = "active"
	}
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO personnel (full_name, phone, role, status, hired_at)
	VALUES (?, ?, ?, ?, ?)`,
		p.FullName, p.Phone, p.Role, p.Status, p.HiredAt)
	if err != nil {
		return fmt.Errorf("inserting personnel: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (s *FleetService) GetPersonnel(ctx context.Context, id int64) (*models.Personnel, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT id, full_name, phone, COALESCE(role, ''), status, hired_at, created_at
	FROM personnel WHERE id = ?`, id)
	var p models.Personnel
	err := row.Scan(&p.ID, &p.FullName, &p.Phone, &p.Role, &p.Status, &p.HiredAt, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPersonnelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPersonnel returns personnel ordered by name, optionally only one status.
func (s *FleetService) ListPersonnel(ctx context.Context, status string) ([]models.Personnel, error) {
	query := `
	SELECT id, full_name, phone, COALESCE(role, ''), status, hired_at, created_at
	FROM personnel`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY full_name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	people := make([]models.Personnel, 0)
	for rows.Next() {
		var p models.Personnel
		if err := rows.Scan(&p.ID, &p.FullName, &p.Phone, &p.Role, &p.Status, &p.HiredAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func (s *FleetService) UpdatePersonnel(ctx context.Context, p *models.Personnel) error {
	p.FullName = validation.NormalizeName(p.FullName)
	if p.FullName == "" {
		return fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}
	res, err := s.db.ExecContext(ctx, `
	UPDATE personnel SET full_name = ?, phone = ?, role = ?, status = ?, hired_at = ? WHERE id = ?`,
		p.FullName, p.Phone, p.Role, p.Status, p.HiredAt, p.ID)
	if err != nil {
		return fmt.Errorf("updating personnel %d: %w", p.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrPersonnelNotFound
	}
	return nil
}

func (s *FleetService) DeletePersonnel(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM personnel WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting personnel %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrPersonnelNotFound
	}
	return nil
}

func (s *FleetService) CreateCategory(ctx context.Context, c *models.TransactionCategory) error {
	c.Name = validation.NormalizeName(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO transaction_categories (name, description) VALUES (?, ?)`, c.Name, c.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateCategory, c.Name)
		}
		return fmt.Errorf("inserting category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (s *FleetService) ListCategories(ctx context.Context) ([]models.TransactionCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, name, description, created_at FROM transaction_categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.TransactionCategory, 0)
	for rows.Next() {
		var c models.TransactionCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *FleetService) UpdateCategory(ctx context.Context, c *models.TransactionCategory) error {
	c.Name = validation.NormalizeName(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	res, err := s.db.ExecContext(ctx, `
	UPDATE transaction_categories SET name = ?, description = ? WHERE id = ?`, c.Name, c.Description, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateCategory, c.Name)
		}
		return fmt.Errorf("updating category %d: %w", c.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *FleetService) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transaction_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
