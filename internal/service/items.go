package service

import (
	"context"

	"github.com/cloo-solutions/linkshelf/internal/domain"
	"github.com/cloo-solutions/linkshelf/internal/pagination"
	"github.com/cloo-solutions/linkshelf/internal/telemetry"
	"github.com/google/uuid"
)

// DefaultRelatedLimit is the number of related items returned when none is requested
const DefaultRelatedLimit = 5

// MaxRelatedLimit bounds the related items lookup
const MaxRelatedLimit = 20

// ItemFilter narrows an item listing. Empty fields do not filter.
type ItemFilter struct {
	Search    string
	Tags      []string
	Platforms []string
	Sources   []string
}

// ItemPageResult is one page of items plus the total matching count
type ItemPageResult struct {
	Items []*domain.Item
	Total int
}

// ItemRepositoryInterface defines the repository interface for item persistence
type ItemRepositoryInterface interface {
	// Create inserts the item and fills in its ID and CreatedAt
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	ExistsByURL(ctx context.Context, url string) (bool, error)
	List(ctx context.Context, filter ItemFilter, limit, offset int) (*ItemPageResult, error)
	DistinctPlatforms(ctx context.Context) ([]string, error)
	DistinctTags(ctx context.Context) ([]string, error)
	DistinctSources(ctx context.Context) ([]string, error)
	Related(ctx context.Context, id string, limit int) ([]*domain.Item, error)
	Delete(ctx context.Context, id string) error
}

// EmbeddingJobRepositoryInterface defines the repository interface for embedding job persistence
type EmbeddingJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// SnapshotStore archives and serves the fetched text of saved items
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, itemID, text string) error
	SnapshotURL(ctx context.Context, itemID string) (string, error)
	DeleteSnapshot(ctx context.Context, itemID string) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// ListInput represents the input for listing items
type ListInput struct {
	Search    string
	Tags      []string
	Platforms []string
	Sources   []string
	Page      int
}

// ItemService serves read access to the library and the admin delete path
type ItemService struct {
	itemRepo  ItemRepositoryInterface
	snapshots SnapshotStore
}

// NewItemService creates a new ItemService. snapshots may be nil.
func NewItemService(itemRepo ItemRepositoryInterface, snapshots SnapshotStore) *ItemService {
	return &ItemService{
		itemRepo:  itemRepo,
		snapshots: snapshots,
	}
}

// List returns one page of items, newest first
func (s *ItemService) List(ctx context.Context, input ListInput) (*pagination.PageResult[*domain.Item], error) {
	ctx, span := telemetry.StartSpan(ctx, "ItemService.List", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	page := pagination.New(input.Page)
	filter := ItemFilter{
		Search:    input.Search,
		Tags:      input.Tags,
		Platforms: input.Platforms,
		Sources:   input.Sources,
	}

	result, err := s.itemRepo.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	out := pagination.NewPageResult(result.Items, page, result.Total)
	return &out, nil
}

// Get retrieves an item by ID
func (s *ItemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	ctx, span := telemetry.StartSpan(ctx, "ItemService.Get", telemetry.SpanAttributes{
		ItemID:    id,
		Operation: "get",
	})
	defer span.End()

	return s.itemRepo.GetByID(ctx, id)
}

// Platforms lists the distinct platforms in use, sorted
func (s *ItemService) Platforms(ctx context.Context) ([]string, error) {
	return s.itemRepo.DistinctPlatforms(ctx)
}

// Tags lists every distinct tag across all items, sorted
func (s *ItemService) Tags(ctx context.Context) ([]string, error) {
	return s.itemRepo.DistinctTags(ctx)
}

// Sources lists the distinct sources in use, sorted
func (s *ItemService) Sources(ctx context.Context) ([]string, error) {
	return s.itemRepo.DistinctSources(ctx)
}

// Related returns the items closest in meaning to the given one. Items without
// an embedding yet have no related items.
func (s *ItemService) Related(ctx context.Context, id string, limit int) ([]*domain.Item, error) {
	ctx, span := telemetry.StartSpan(ctx, "ItemService.Related", telemetry.SpanAttributes{
		ItemID:    id,
		Operation: "related",
	})
	defer span.End()

	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	if limit > MaxRelatedLimit {
		limit = MaxRelatedLimit
	}

	if _, err := s.itemRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	return s.itemRepo.Related(ctx, id, limit)
}

// SnapshotURL returns a time-limited download link for the archived text of an item
func (s *ItemService) SnapshotURL(ctx context.Context, id string) (string, error) {
	if s.snapshots == nil {
		return "", domain.ErrSnapshotNotFound
	}
	if _, err := s.itemRepo.GetByID(ctx, id); err != nil {
		return "", err
	}
	return s.snapshots.SnapshotURL(ctx, id)
}

// Delete removes an item and its archived snapshot
func (s *ItemService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "ItemService.Delete", telemetry.SpanAttributes{
		ItemID:    id,
		Operation: "delete",
	})
	defer span.End()

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.snapshots != nil {
		if err := s.snapshots.DeleteSnapshot(ctx, id); err != nil {
			telemetry.AddWarningBreadcrumb(ctx, "snapshot", "failed to delete snapshot")
		}
	}
	return nil
}
