package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"receiptiq/internal/model"
	"receiptiq/internal/service"
)

type MockReceiptFileService struct {
	mock.Mock
}

func (m *MockReceiptFileService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.ReceiptFile, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReceiptFile), args.Error(1)
}

func (m *MockReceiptFileService) Get(ctx context.Context, id string) (*model.ReceiptFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReceiptFile), args.Error(1)
}

func (m *MockReceiptFileService) DownloadURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockReceiptFileService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReceiptFileService) Validate(ctx context.Context, id string) (*service.ValidationResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ValidationResult), args.Error(1)
}

func (m *MockReceiptFileService) Process(ctx context.Context, id string) (*model.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}
