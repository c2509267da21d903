// Package fetch retrieves a web page and reduces it to bounded plain text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

const (
	// MaxTextLength caps the extracted text, in characters, handed to the AI prompt
	MaxTextLength = 10000

	DefaultTimeout   = 10 * time.Second
	DefaultMaxBytes  = 2 << 20
	DefaultUserAgent = "Mozilla/5.0 (compatible; LinkShelf/1.0)"
)

// Config configures the HTTP fetcher
type Config struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

// Fetcher downloads pages over HTTP
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
	logger    zerolog.Logger
}

// New creates a Fetcher, filling unset config fields with defaults
func New(cfg Config, logger zerolog.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
		logger:    logger.With().Str("component", "fetch").Logger(),
	}
}

// FetchText returns the plain text of the page at url, or "" when the page
// cannot be retrieved. Failures are logged here and never reach the caller.
func (f *Fetcher) FetchText(ctx context.Context, url string) string {
	body, err := f.get(ctx, url)
	if err != nil {
		f.logger.Warn().Err(err).Str("url", url).Msg("content fetch failed")
		return ""
	}

	text, err := ExtractText(body)
	if err != nil {
		f.logger.Warn().Err(err).Str("url", url).Msg("content parse failed")
		return ""
	}
	return text
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	return string(body), nil
}

// ExtractText strips script and style elements with their contents, drops the
// remaining markup, collapses whitespace and truncates to MaxTextLength.
func ExtractText(document string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	doc.Find("script, style").Remove()

	var b strings.Builder
	for _, n := range doc.Nodes {
		writeText(&b, n)
	}

	return truncate(collapseWhitespace(b.String()), MaxTextLength), nil
}

// writeText appends every text node below n, each followed by a space so that
// adjacent elements never run together.
func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteByte(' ')
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
