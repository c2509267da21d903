package handlers

import (
	"context"
	"time"

	"github.com/cloo-solutions/linkshelf/internal/domain"
	"github.com/cloo-solutions/linkshelf/internal/pagination"
	"github.com/cloo-solutions/linkshelf/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Save(ctx context.Context, rawURL string) (*domain.Item, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) List(ctx context.Context, input service.ListInput) (*pagination.PageResult[*domain.Item], error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[*domain.Item]), args.Error(1)
}

func (m *MockItemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemService) Related(ctx context.Context, id string, limit int) ([]*domain.Item, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Item), args.Error(1)
}

func (m *MockItemService) SnapshotURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockItemService) Platforms(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockItemService) Tags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockItemService) Sources(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newTestItem(id string) *domain.Item {
	return &domain.Item{
		ID:          id,
		URL:         "https://medium.com/@writer/go-patterns",
		Title:       "Go patterns",
		Summary:     "A tour of common Go patterns.",
		Tags:        []string{"go", "patterns", "backend"},
		Source:      "Medium",
		Platform:    domain.PlatformMedium,
		ContentType: domain.ContentTypeArticle,
		CreatedAt:   time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC),
	}
}
