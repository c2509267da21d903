package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/cloo-solutions/linkshelf/internal/domain"
	"github.com/cloo-solutions/linkshelf/internal/telemetry"
	"github.com/rs/zerolog"
)

// ItemExtractor turns a URL into item metadata and never fails
type ItemExtractor interface {
	Extract(ctx context.Context, rawURL string) ExtractResult
}

// SaveLocker serializes saves of the same URL across processes
type SaveLocker interface {
	// TryLock returns ok=false when another save holds the key
	TryLock(ctx context.Context, key string) (unlock func(), ok bool, err error)
}

// IngestService saves URLs into the library
type IngestService struct {
	itemRepo  ItemRepositoryInterface
	txRunner  TxRunner
	extractor ItemExtractor
	locker    SaveLocker
	snapshots SnapshotStore
	uuidGen   UUIDGenerator
	logger    zerolog.Logger
}

// IngestOption customizes an IngestService
type IngestOption func(*IngestService)

// WithSaveLocker closes the window between the duplicate check and the insert
func WithSaveLocker(l SaveLocker) IngestOption {
	return func(s *IngestService) {
		s.locker = l
	}
}

// WithSnapshotStore archives the fetched text of every saved item
func WithSnapshotStore(store SnapshotStore) IngestOption {
	return func(s *IngestService) {
		s.snapshots = store
	}
}

// WithUUIDGenerator replaces the embedding job ID source (for testing)
func WithUUIDGenerator(gen UUIDGenerator) IngestOption {
	return func(s *IngestService) {
		s.uuidGen = gen
	}
}

// NewIngestService creates a new IngestService instance
func NewIngestService(
	itemRepo ItemRepositoryInterface,
	txRunner TxRunner,
	extractor ItemExtractor,
	logger zerolog.Logger,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		itemRepo:  itemRepo,
		txRunner:  txRunner,
		extractor: extractor,
		uuidGen:   &DefaultUUIDGenerator{},
		logger:    logger.With().Str("component", "ingest").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save validates rawURL, rejects duplicates, extracts metadata and persists
// the item together with its embedding job. Extraction problems never fail a
// save; only invalid input, duplicates and storage errors are returned.
func (s *IngestService) Save(ctx context.Context, rawURL string) (*domain.Item, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Save", telemetry.SpanAttributes{
		URL:       rawURL,
		Operation: "save",
	})
	defer span.End()

	link, err := ParseSaveURL(rawURL)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, link)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("url", link).Msg("save lock unavailable, relying on unique index")
		case !ok:
			return nil, domain.ErrURLAlreadyExists
		default:
			defer unlock()
		}
	}

	exists, err := s.itemRepo.ExistsByURL(ctx, link)
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrStorageFailure.WithCause(err)
	}
	if exists {
		return nil, domain.ErrURLAlreadyExists
	}

	result := s.extractor.Extract(ctx, link)

	item := domain.NewItem(link, result.Extraction)
	if err := domain.ValidateItem(item); err != nil {
		return nil, domain.ErrStorageFailure.WithCause(err)
	}

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Items().Create(ctx, item); err != nil {
			return err
		}
		job := domain.NewPendingEmbeddingJob(s.uuidGen.NewString(), item.ID, time.Now().UTC())
		return repos.EmbeddingJobs().Create(ctx, job)
	})
	if err != nil {
		if errors.Is(err, domain.ErrURLAlreadyExists) {
			return nil, domain.ErrURLAlreadyExists
		}
		span.SetError(err)
		s.logger.Error().Err(err).Str("url", link).Msg("failed to persist item")
		return nil, domain.ErrStorageFailure.WithCause(err)
	}

	span.Tag("item_id", item.ID)
	span.Tag("platform", string(item.Platform))
	s.archive(ctx, item.ID, result.Content)

	s.logger.Info().
		Str("item_id", item.ID).
		Str("url", link).
		Str("platform", string(item.Platform)).
		Bool("degraded", result.Degraded).
		Msg("item saved")

	return item, nil
}

func (s *IngestService) archive(ctx context.Context, itemID, content string) {
	if s.snapshots == nil || content == "" {
		return
	}
	if err := s.snapshots.PutSnapshot(ctx, itemID, content); err != nil {
		s.logger.Warn().Err(err).Str("item_id", itemID).Msg("failed to archive snapshot")
		telemetry.AddWarningBreadcrumb(ctx, "snapshot", "failed to archive snapshot")
	}
}

// ParseSaveURL trims raw and checks it is an absolute http(s) URL with a host.
// The trimmed value is returned unchanged otherwise.
func ParseSaveURL(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", domain.ErrURLRequired
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", domain.ErrInvalidURL.WithCause(err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", domain.ErrInvalidURL.WithCause(fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Hostname() == "" {
		return "", domain.ErrInvalidURL.WithCause(errors.New("missing host"))
	}

	return link, nil
}

var sharedURLPattern = regexp.MustCompile(`(?i)https?://[^\s<>"']+`)

// FirstURL returns the first http(s) URL found in free text, as shared by
// mobile share sheets ("Look at this https://..."), or "" when there is none.
func FirstURL(text string) string {
	return strings.TrimRight(sharedURLPattern.FindString(text), ".,;:!?)")
}
