package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/cloo-solutions/linkshelf/internal/classifier"
	"github.com/cloo-solutions/linkshelf/internal/domain"
	"github.com/cloo-solutions/linkshelf/internal/telemetry"
	"github.com/rs/zerolog"
)

// Sentinel values written when the AI answer is missing a field
const (
	UntitledTitle = "Untitled"
	NoSummary     = "No summary"
	GeneralTag    = "general"
)

// Fallback record values used when extraction cannot complete at all
const (
	FallbackTitle   = "New content"
	FallbackSummary = "Could not process automatically"
	FallbackTag     = "to classify"
)

// NoContentNotice replaces the page text in the prompt when the fetch came back empty
const NoContentNotice = "Content extraction failed. Analyze based on the URL alone."

// DefaultSummaryLanguage is the language the model is asked to answer in
const DefaultSummaryLanguage = "English"

var errNoCompleter = errors.New("no AI client configured")

// ContentFetcher reduces the page at a URL to plain text, "" when unavailable
type ContentFetcher interface {
	FetchText(ctx context.Context, url string) string
}

// Completer is the AI capability: a system instruction and a user message in,
// free-form text out
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ExtractResult is the outcome of Extract. Extraction is always usable.
type ExtractResult struct {
	Extraction domain.Extraction
	// Content is the fetched plain text, empty when the fetch failed
	Content string
	// Degraded is set when the fallback record was used
	Degraded bool
}

// Extractor turns a URL into normalized item metadata
type Extractor struct {
	fetcher  ContentFetcher
	ai       Completer
	language string
	logger   zerolog.Logger
}

// NewExtractor creates an Extractor. ai may be nil, in which case every
// extraction degrades to the fallback record.
func NewExtractor(fetcher ContentFetcher, ai Completer, language string, logger zerolog.Logger) *Extractor {
	if language == "" {
		language = DefaultSummaryLanguage
	}
	return &Extractor{
		fetcher:  fetcher,
		ai:       ai,
		language: language,
		logger:   logger.With().Str("component", "extractor").Logger(),
	}
}

// Extract fetches the page, asks the AI for structured metadata and normalizes
// the answer. It never fails: any transport or parse problem yields the
// fallback record.
func (e *Extractor) Extract(ctx context.Context, rawURL string) ExtractResult {
	ctx, span := telemetry.StartSpan(ctx, "Extractor.Extract", telemetry.SpanAttributes{
		URL:       rawURL,
		Operation: "extract",
	})
	defer span.End()

	content := e.fetcher.FetchText(ctx, rawURL)
	if content == "" {
		telemetry.AddWarningBreadcrumb(ctx, "fetch", "content fetch returned no text")
	}

	hint := classifier.Classify(rawURL)
	span.Tag("platform_hint", string(hint))

	fields, err := e.complete(ctx, rawURL, hint, content)
	if err != nil {
		e.logger.Warn().Err(err).Str("url", rawURL).Msg("extraction degraded, using fallback")
		telemetry.AddWarningBreadcrumb(ctx, "extraction", err.Error())
		return ExtractResult{
			Extraction: FallbackExtraction(rawURL, hint),
			Content:    content,
			Degraded:   true,
		}
	}

	return ExtractResult{
		Extraction: normalizeExtraction(fields, rawURL, hint),
		Content:    content,
	}
}

func (e *Extractor) complete(ctx context.Context, rawURL string, hint domain.Platform, content string) (map[string]any, error) {
	if e.ai == nil {
		return nil, errNoCompleter
	}

	answer, err := e.ai.Complete(ctx, e.systemPrompt(), buildUserPrompt(rawURL, hint, content))
	if err != nil {
		return nil, err
	}

	return parseExtraction(answer)
}

func (e *Extractor) systemPrompt() string {
	return fmt.Sprintf(`You are a knowledge processing system. You receive a URL and the text of the page and return structured information.

Return only JSON in the following format, with no other text:
{
  "title": "short clear title (up to 60 characters)",
  "summary": "2-3 sentence summary of the main idea",
  "tags": ["tag1", "tag2", "tag3"],
  "source": "name of the source (author, channel or site)",
  "platform": "one of: %s",
  "content_type": "one of: %s"
}

Rules:
- summary: at most 3 sentences, focused on the central insight
- tags: exactly 3 relevant tags
- write title, summary and tags in %s, translating if needed
- identify the content type from the URL and the content
- return valid JSON only`, joinPlatforms(), joinContentTypes(), e.language)
}

func buildUserPrompt(rawURL string, hint domain.Platform, content string) string {
	if content == "" {
		content = NoContentNotice
	}
	return fmt.Sprintf("URL: %s\nDetected platform: %s\n\nPage content:\n%s\n\nReturn the JSON analysis:", rawURL, hint, content)
}

// parseExtraction accepts exactly one JSON object, optionally surrounded by
// whitespace. Prose, code fences or any other top-level value is an error.
func parseExtraction(answer string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(answer)), &fields); err != nil {
		return nil, fmt.Errorf("parsing AI response: %w", err)
	}
	if fields == nil {
		return nil, errors.New("parsing AI response: not a JSON object")
	}
	return fields, nil
}

func normalizeExtraction(fields map[string]any, rawURL string, hint domain.Platform) domain.Extraction {
	ext := domain.Extraction{
		Title:       stringField(fields, "title", UntitledTitle),
		Summary:     stringField(fields, "summary", NoSummary),
		Tags:        tagsField(fields),
		Source:      stringField(fields, "source", hostname(rawURL)),
		Platform:    hint,
		ContentType: domain.ContentTypeOther,
	}

	if p := domain.Platform(strings.ToLower(stringField(fields, "platform", ""))); domain.IsValidPlatform(p) {
		ext.Platform = p
	}
	if c := domain.ContentType(strings.ToLower(stringField(fields, "content_type", ""))); domain.IsValidContentType(c) {
		ext.ContentType = c
	}

	return ext
}

func stringField(fields map[string]any, key, fallback string) string {
	s, ok := fields[key].(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(cleanText(s))
	if s == "" {
		return fallback
	}
	return s
}

func tagsField(fields map[string]any) []string {
	raw, ok := fields["tags"].([]any)
	if !ok {
		return []string{GeneralTag}
	}

	tags := make([]string, 0, domain.MaxTags)
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(cleanText(s)); s == "" {
			continue
		}
		tags = append(tags, s)
		if len(tags) == domain.MaxTags {
			break
		}
	}

	if len(tags) == 0 {
		return []string{GeneralTag}
	}
	return tags
}

// cleanText drops control characters other than newline and tab. Postgres
// text columns reject NUL, so they must not reach the store.
func cleanText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// FallbackExtraction is the deterministic record used when extraction fails
func FallbackExtraction(rawURL string, hint domain.Platform) domain.Extraction {
	return domain.Extraction{
		Title:       FallbackTitle,
		Summary:     FallbackSummary,
		Tags:        []string{FallbackTag},
		Source:      hostname(rawURL),
		Platform:    hint,
		ContentType: domain.ContentTypeOther,
	}
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func joinPlatforms() string {
	names := make([]string, len(domain.Platforms))
	for i, p := range domain.Platforms {
		names[i] = string(p)
	}
	return strings.Join(names, "/")
}

func joinContentTypes() string {
	names := make([]string, len(domain.ContentTypes))
	for i, c := range domain.ContentTypes {
		names[i] = string(c)
	}
	return strings.Join(names, "/")
}
