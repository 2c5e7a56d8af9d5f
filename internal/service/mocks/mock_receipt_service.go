package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"receiptiq/internal/model"
	"receiptiq/internal/service"
)

type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) List(ctx context.Context, limit, offset int) (*service.ReceiptListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReceiptListResult), args.Error(1)
}

func (m *MockReceiptService) Get(ctx context.Context, id string) (*model.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}
