package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/linkshelf/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingItemRepository defines the repository interface for embedding operations
type EmbeddingItemRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// EmbeddingService computes the vectors behind related-item lookups
type EmbeddingService struct {
	client EmbeddingClient
	repo   EmbeddingItemRepository
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient, repo EmbeddingItemRepository) *EmbeddingService {
	return &EmbeddingService{
		client: client,
		repo:   repo,
	}
}

// GenerateEmbedding generates and stores an embedding for the given item ID
// This method is called by the background worker
func (s *EmbeddingService) GenerateEmbedding(ctx context.Context, itemID string) error {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	embedding, err := s.client.GenerateEmbedding(ctx, buildEmbeddingText(item))
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	if err := s.repo.UpdateEmbedding(ctx, itemID, embedding); err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}

	return nil
}

func buildEmbeddingText(item *domain.Item) string {
	var parts []string

	if item.Title != "" {
		parts = append(parts, item.Title)
	}
	if item.Summary != "" {
		parts = append(parts, item.Summary)
	}
	if len(item.Tags) > 0 {
		parts = append(parts, strings.Join(item.Tags, ", "))
	}

	return strings.Join(parts, "\n")
}
