package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"portfolioapi/internal/model"
	"portfolioapi/internal/service"
)

type MockPortfolioService struct {
	mock.Mock
}

var _ service.PortfolioService = (*MockPortfolioService)(nil)

func (m *MockPortfolioService) Files() *model.PortfolioRecord {
	args := m.Called()
	if args.Get(0) == nil {
		return model.NewPortfolioRecord()
	}
	return args.Get(0).(*model.PortfolioRecord)
}

func (m *MockPortfolioService) IsUploading() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPortfolioService) Upload(ctx context.Context, u service.Upload, category model.Category) (*model.FileRecord, error) {
	args := m.Called(ctx, u, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockPortfolioService) Delete(ctx context.Context, id string, category model.Category) error {
	args := m.Called(ctx, id, category)
	return args.Error(0)
}

func (m *MockPortfolioService) Replace(ctx context.Context, u service.Upload, category model.Category, id string) (*model.FileRecord, error) {
	args := m.Called(ctx, u, category, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockPortfolioService) ClearAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPortfolioService) Content(ctx context.Context, id string) (*model.FileRecord, []byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var data []byte
	if b := args.Get(1); b != nil {
		data = b.([]byte)
	}
	return args.Get(0).(*model.FileRecord), data, args.Error(2)
}

func (m *MockPortfolioService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
