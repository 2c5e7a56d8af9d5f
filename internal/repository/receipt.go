package repository

import (
	"context"

	"receiptiq/internal/model"
)

// ReceiptRepository defines data access for receipts and their items.
type ReceiptRepository interface {
	// CreateForFile stores the receipt, its items and marks the owning file processed
	// in one transaction. Returns ErrAlreadyProcessed if the file already has a receipt.
	CreateForFile(ctx context.Context, r *model.Receipt) (*model.Receipt, error)

	// FindByID returns a receipt with its items, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Receipt, error)

	// List returns a page of receipts with items and the total receipt count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Receipt], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
