package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"receiptiq/internal/model"
)

var receiptFileCols = []string{"id", "file_name", "storage_path", "is_valid", "invalid_reason", "is_processed", "created_at", "updated_at"}

func TestReceiptFilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewReceiptFilePostgres(db)
	now := time.Now().UTC()
	f := &model.ReceiptFile{
		ID:          "file-1",
		FileName:    "lunch.pdf",
		StoragePath: "receipts/file-1.pdf",
		CreatedAt:   now,
	}

	rows := sqlmock.NewRows(receiptFileCols).
		AddRow(f.ID, f.FileName, f.StoragePath, nil, nil, false, now, nil)
	mock.ExpectQuery("INSERT INTO receipt_files").
		WithArgs(f.ID, f.FileName, f.StoragePath, f.CreatedAt).
		WillReturnRows(rows)

	out, err := repo.Create(context.Background(), f)

	assert.NoError(t, err)
	assert.Equal(t, "file-1", out.ID)
	assert.Nil(t, out.IsValid)
	assert.Nil(t, out.InvalidReason)
	assert.False(t, out.IsProcessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptFilePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewReceiptFilePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(receiptFileCols).
			AddRow("file-1", "lunch.pdf", "receipts/file-1.pdf", true, "File is a valid PDF.", true, time.Now(), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM receipt_files WHERE id = ?").
			WithArgs("file-1").
			WillReturnRows(rows)

		f, err := repo.FindByID(ctx, "file-1")

		assert.NoError(t, err)
		assert.True(t, f.Validated())
		assert.Equal(t, "File is a valid PDF.", *f.InvalidReason)
		assert.True(t, f.IsProcessed)
		assert.NotNil(t, f.UpdatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM receipt_files WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		f, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, f)
	})
}

func TestReceiptFilePostgres_UpdateValidation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewReceiptFilePostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE receipt_files").
		WithArgs("file-1", false, "File is not a valid PDF or is corrupted.").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdateValidation(ctx, "file-1", false, "File is not a valid PDF or is corrupted."))

	mock.ExpectExec("UPDATE receipt_files").
		WithArgs("gone", true, "File is a valid PDF.").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateValidation(ctx, "gone", true, "File is a valid PDF."), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptFilePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewReceiptFilePostgres(db)

	mock.ExpectExec("DELETE FROM receipt_files WHERE id = ?").
		WithArgs("file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(context.Background(), "file-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
