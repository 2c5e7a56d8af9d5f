package repository

import (
	"context"
	"errors"

	"receiptiq/internal/model"
)

// ErrAlreadyProcessed is returned when a receipt is created for a file that already has one.
var ErrAlreadyProcessed = errors.New("receipt file already processed")

// ReceiptFileRepository defines data access for uploaded receipt files.
// No business logic here, strictly persistence operations.
type ReceiptFileRepository interface {
	// Create inserts a new file record and returns the stored row.
	Create(ctx context.Context, f *model.ReceiptFile) (*model.ReceiptFile, error)

	// FindByID returns a file by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.ReceiptFile, error)

	// UpdateValidation records the validation outcome. Returns sql.ErrNoRows if the file is gone.
	UpdateValidation(ctx context.Context, id string, isValid bool, reason string) error

	// Delete removes a file by ID. Receipts cascade. Missing rows are not an error.
	Delete(ctx context.Context, id string) error
}
