package migration

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptiq/internal/logging"
)

func TestEnsureMigrated(t *testing.T) {
	checkQuery := regexp.QuoteMeta("SELECT to_regclass('public.receipt_items') IS NOT NULL")

	t.Run("schema exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(checkQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		var buf bytes.Buffer
		err = EnsureMigrated(context.Background(), db, logging.New(logging.Options{Output: &buf}), "db")
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "db_migration_skip")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fresh database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(checkQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		for _, step := range steps {
			mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		err = EnsureMigrated(context.Background(), db, logging.Nop(), "db")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("step fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(checkQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(context.Background(), db, logging.Nop(), "db")
		assert.ErrorContains(t, err, "create_table_receipt_files")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("check fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(checkQuery).WillReturnError(errors.New("conn refused"))

		err = EnsureMigrated(context.Background(), db, logging.Nop(), "db")
		assert.ErrorContains(t, err, "sentinel")
	})
}

func TestSteps_CascadeAndUniqueness(t *testing.T) {
	var receipts string
	for _, s := range steps {
		if s.Name == "create_table_receipts" {
			receipts = s.SQL
		}
	}
	require.NotEmpty(t, receipts)
	assert.Contains(t, receipts, "NOT NULL UNIQUE REFERENCES receipt_files (id) ON DELETE CASCADE")
}

func TestSteps_ItemsKeepPosition(t *testing.T) {
	var items string
	for _, s := range steps {
		if s.Name == "create_table_receipt_items" {
			items = s.SQL
		}
	}
	require.NotEmpty(t, items)
	assert.Contains(t, items, "position    INT              NOT NULL")
}
