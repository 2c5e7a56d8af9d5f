package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"receiptiq/internal/model"
)

type MockReceiptFileRepository struct {
	mock.Mock
}

func (m *MockReceiptFileRepository) Create(ctx context.Context, f *model.ReceiptFile) (*model.ReceiptFile, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReceiptFile), args.Error(1)
}

func (m *MockReceiptFileRepository) FindByID(ctx context.Context, id string) (*model.ReceiptFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReceiptFile), args.Error(1)
}

func (m *MockReceiptFileRepository) UpdateValidation(ctx context.Context, id string, isValid bool, reason string) error {
	args := m.Called(ctx, id, isValid, reason)
	return args.Error(0)
}

func (m *MockReceiptFileRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
