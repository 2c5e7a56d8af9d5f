package postgres

import (
	"context"
	"database/sql"

	"receiptiq/internal/model"
	"receiptiq/internal/repository"
)

// ReceiptFilePostgres is a PostgreSQL implementation of repository.ReceiptFileRepository.
type ReceiptFilePostgres struct {
	db *sql.DB
}

// NewReceiptFilePostgres creates a new ReceiptFilePostgres repository.
func NewReceiptFilePostgres(db *sql.DB) *ReceiptFilePostgres {
	return &ReceiptFilePostgres{db: db}
}

var _ repository.ReceiptFileRepository = (*ReceiptFilePostgres)(nil)

const receiptFileColumns = `id, file_name, storage_path, is_valid, invalid_reason, is_processed, created_at, updated_at`

// Create inserts a new file row and returns the stored record.
func (r *ReceiptFilePostgres) Create(ctx context.Context, f *model.ReceiptFile) (*model.ReceiptFile, error) {
	const q = `
		INSERT INTO receipt_files (id, file_name, storage_path, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + receiptFileColumns
	row := r.db.QueryRowContext(ctx, q, f.ID, f.FileName, f.StoragePath, f.CreatedAt)
	return scanReceiptFile(row)
}

// FindByID fetches a single file by its ID.
func (r *ReceiptFilePostgres) FindByID(ctx context.Context, id string) (*model.ReceiptFile, error) {
	const q = `SELECT ` + receiptFileColumns + ` FROM receipt_files WHERE id = $1`
	return scanReceiptFile(r.db.QueryRowContext(ctx, q, id))
}

// UpdateValidation stores the validation verdict and reason.
func (r *ReceiptFilePostgres) UpdateValidation(ctx context.Context, id string, isValid bool, reason string) error {
	const q = `
		UPDATE receipt_files
		SET is_valid = $2, invalid_reason = $3, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, isValid, reason)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a file by ID. It does not return an error if the row does not exist.
func (r *ReceiptFilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM receipt_files WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func scanReceiptFile(row *sql.Row) (*model.ReceiptFile, error) {
	var f model.ReceiptFile
	if err := row.Scan(
		&f.ID,
		&f.FileName,
		&f.StoragePath,
		&f.IsValid,
		&f.InvalidReason,
		&f.IsProcessed,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}
