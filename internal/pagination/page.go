package pagination

import (
	"math"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of items returned per listing page
const DefaultPageSize = 20

// Page is a 1-based page of a fixed size
type Page struct {
	Number int
	Size   int
}

// PageResult represents a paginated result set
type PageResult[T any] struct {
	Items    []T  `json:"items"`
	HasMore  bool `json:"hasMore"`
	NextPage *int `json:"nextPage,omitempty"`
	Total    int  `json:"total"`
}

// New returns page number with the default size. Numbers below 1 become 1.
func New(number int) Page {
	return NewWithSize(number, DefaultPageSize)
}

// NewWithSize is New with an explicit page size. Numbers are capped so the
// end offset of the page always fits in an int.
func NewWithSize(number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if number < 1 {
		number = 1
	}
	if maxNumber := math.MaxInt / size; number > maxNumber {
		number = maxNumber
	}
	return Page{Number: number, Size: size}
}

// Parse reads a page number from a query string value. Empty or malformed
// values yield the first page.
func Parse(raw string) Page {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = 1
	}
	return New(n)
}

// Offset is the number of rows skipped before this page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit is the number of rows in this page
func (p Page) Limit() int {
	return p.Size
}

// HasMore reports whether rows remain after this page given the total count
func (p Page) HasMore(total int) bool {
	return p.Offset()+p.Size < total
}

// Next returns the following page number, or nil when this is the last page
func (p Page) Next(total int) *int {
	if !p.HasMore(total) {
		return nil
	}
	next := p.Number + 1
	return &next
}

// NewPageResult assembles a PageResult for items fetched at page p
func NewPageResult[T any](items []T, p Page, total int) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:    items,
		HasMore:  p.HasMore(total),
		NextPage: p.Next(total),
		Total:    total,
	}
}
