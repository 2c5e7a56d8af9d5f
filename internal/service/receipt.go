package service

import (
	"context"
	"database/sql"
	"errors"

	"receiptiq/internal/model"
	"receiptiq/internal/repository"
)

const defaultReceiptLimit = 100

// ReceiptListResult is a page of receipts.
type ReceiptListResult struct {
	Items []model.Receipt `json:"data"`
	Total int             `json:"total"`
}

// ReceiptService reads extracted receipts.
type ReceiptService interface {
	List(ctx context.Context, limit, offset int) (*ReceiptListResult, error)
	Get(ctx context.Context, id string) (*model.Receipt, error)
}

type receiptService struct {
	repo repository.ReceiptRepository
}

func NewReceiptService(repo repository.ReceiptRepository) ReceiptService {
	return &receiptService{repo: repo}
}

func (s *receiptService) List(ctx context.Context, limit, offset int) (*ReceiptListResult, error) {
	if limit <= 0 {
		limit = defaultReceiptLimit
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ReceiptListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *receiptService) Get(ctx context.Context, id string) (*model.Receipt, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	rc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rc, nil
}
