package services

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrPersonnelNotFound   = errors.New("personnel not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrDuplicatePlate      = errors.New("vehicle plate already registered")
	ErrDuplicateCategory   = errors.New("category name already exists")
	ErrInvalidInput        = errors.New("invalid input")
)
