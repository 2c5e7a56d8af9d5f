package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"receiptiq/internal/model"
	"receiptiq/internal/repository"
)

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) CreateForFile(ctx context.Context, r *model.Receipt) (*model.Receipt, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByID(ctx context.Context, id string) (*model.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Receipt], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Receipt]), args.Error(1)
}
