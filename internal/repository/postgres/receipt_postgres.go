package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"receiptiq/internal/model"
	"receiptiq/internal/repository"
)

const pgUniqueViolation = "23505"

// ReceiptPostgres is a PostgreSQL implementation of repository.ReceiptRepository.
type ReceiptPostgres struct {
	db *sql.DB
}

// NewReceiptPostgres creates a new ReceiptPostgres repository.
func NewReceiptPostgres(db *sql.DB) *ReceiptPostgres {
	return &ReceiptPostgres{db: db}
}

var _ repository.ReceiptRepository = (*ReceiptPostgres)(nil)

// CreateForFile inserts the receipt and its items and flips the file's processed flag.
// The file row is locked first so concurrent calls for one file serialize here.
func (r *ReceiptPostgres) CreateForFile(ctx context.Context, rc *model.Receipt) (_ *model.Receipt, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var processed bool
	const qLock = `SELECT is_processed FROM receipt_files WHERE id = $1 FOR UPDATE`
	if err = tx.QueryRowContext(ctx, qLock, rc.ReceiptFileID).Scan(&processed); err != nil {
		return nil, err
	}
	if processed {
		err = repository.ErrAlreadyProcessed
		return nil, err
	}

	const qReceipt = `
		INSERT INTO receipts (id, receipt_file_id, purchased_at, merchant_name, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, receipt_file_id, purchased_at, merchant_name, total_amount, created_at, updated_at
	`
	var out model.Receipt
	if err = tx.QueryRowContext(ctx, qReceipt,
		rc.ID,
		rc.ReceiptFileID,
		rc.PurchasedAt,
		rc.MerchantName,
		rc.TotalAmount,
		rc.CreatedAt,
	).Scan(
		&out.ID,
		&out.ReceiptFileID,
		&out.PurchasedAt,
		&out.MerchantName,
		&out.TotalAmount,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		err = mapUniqueViolation(err)
		return nil, err
	}

	const qItem = `
		INSERT INTO receipt_items (id, receipt_id, position, description, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	out.Items = make([]model.ReceiptItem, 0, len(rc.Items))
	for pos, it := range rc.Items {
		if _, err = tx.ExecContext(ctx, qItem, it.ID, out.ID, pos, it.Description, it.Quantity, it.Price); err != nil {
			err = fmt.Errorf("insert item %q: %w", it.Description, err)
			return nil, err
		}
		it.ReceiptID = out.ID
		out.Items = append(out.Items, it)
	}

	const qProcessed = `UPDATE receipt_files SET is_processed = TRUE, updated_at = NOW() WHERE id = $1`
	if _, err = tx.ExecContext(ctx, qProcessed, rc.ReceiptFileID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

// receiptWithItems selects receipts from a derived table aliased r joined to their items,
// items in the order the model listed them.
const receiptWithItems = `
	SELECT r.id, r.receipt_file_id, r.purchased_at, r.merchant_name, r.total_amount, r.created_at, r.updated_at,
	       i.id, i.description, i.quantity, i.price
	FROM %s r
	LEFT JOIN receipt_items i ON i.receipt_id = r.id
	ORDER BY r.created_at DESC, r.id DESC, i.position
`

// FindByID fetches a single receipt with its items.
func (r *ReceiptPostgres) FindByID(ctx context.Context, id string) (*model.Receipt, error) {
	q := fmt.Sprintf(receiptWithItems, `(SELECT * FROM receipts WHERE id = $1)`)
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	receipts, err := scanReceipts(rows)
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, sql.ErrNoRows
	}
	return &receipts[0], nil
}

// List returns receipts using LIMIT/OFFSET pagination and a total count.
func (r *ReceiptPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Receipt], error) {
	const qCount = `SELECT COUNT(*) FROM receipts`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(receiptWithItems, `(SELECT * FROM receipts ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2)`)
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	items, err := scanReceipts(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Receipt]{
		Items: items,
		Total: total,
	}, nil
}

// scanReceipts folds joined receipt/item rows back into receipts, keeping row order.
func scanReceipts(rows *sql.Rows) ([]model.Receipt, error) {
	defer rows.Close()

	out := make([]model.Receipt, 0)
	index := make(map[string]int)
	for rows.Next() {
		var (
			rc          model.Receipt
			itemID      sql.NullString
			description sql.NullString
			quantity    sql.NullFloat64
			price       sql.NullFloat64
		)
		if err := rows.Scan(
			&rc.ID,
			&rc.ReceiptFileID,
			&rc.PurchasedAt,
			&rc.MerchantName,
			&rc.TotalAmount,
			&rc.CreatedAt,
			&rc.UpdatedAt,
			&itemID,
			&description,
			&quantity,
			&price,
		); err != nil {
			return nil, err
		}
		pos, ok := index[rc.ID]
		if !ok {
			rc.Items = make([]model.ReceiptItem, 0)
			out = append(out, rc)
			pos = len(out) - 1
			index[rc.ID] = pos
		}
		if itemID.Valid {
			out[pos].Items = append(out[pos].Items, model.ReceiptItem{
				ID:          itemID.String,
				ReceiptID:   rc.ID,
				Description: description.String,
				Quantity:    quantity.Float64,
				Price:       price.Float64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %v", repository.ErrAlreadyProcessed, err)
	}
	return err
}
