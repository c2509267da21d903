package domain

import (
	"fmt"
	"time"
)

// Platform is the origin site or app of a saved link
type Platform string

const (
	PlatformYouTube  Platform = "youtube"
	PlatformTwitter  Platform = "twitter"
	PlatformLinkedIn Platform = "linkedin"
	PlatformMedium   Platform = "medium"
	PlatformSubstack Platform = "substack"
	PlatformSpotify  Platform = "spotify"
	PlatformPodcast  Platform = "podcast"
	PlatformNews     Platform = "news"
	PlatformBlog     Platform = "blog"
	PlatformOther    Platform = "other"
)

// Platforms lists every accepted platform value in display order
var Platforms = []Platform{
	PlatformYouTube, PlatformTwitter, PlatformLinkedIn, PlatformMedium, PlatformSubstack,
	PlatformSpotify, PlatformPodcast, PlatformNews, PlatformBlog, PlatformOther,
}

// ContentType is the coarse media kind of a saved link
type ContentType string

const (
	ContentTypeArticle ContentType = "article"
	ContentTypeVideo   ContentType = "video"
	ContentTypeAudio   ContentType = "audio"
	ContentTypePost    ContentType = "post"
	ContentTypeOther   ContentType = "other"
)

// ContentTypes lists every accepted content type value
var ContentTypes = []ContentType{
	ContentTypeArticle, ContentTypeVideo, ContentTypeAudio, ContentTypePost, ContentTypeOther,
}

// MaxTags is the number of tags kept on an item
const MaxTags = 3

// Item is a saved link with its AI-generated metadata.
// ID and CreatedAt are assigned by the store on insert.
type Item struct {
	ID          string
	URL         string
	Title       string
	Summary     string
	Tags        []string
	Source      string
	Platform    Platform
	ContentType ContentType
	CreatedAt   time.Time
}

// Extraction is the normalized metadata produced for a URL before it is persisted
type Extraction struct {
	Title       string
	Summary     string
	Tags        []string
	Source      string
	Platform    Platform
	ContentType ContentType
}

// NewItem builds an unsaved item from a URL and its extraction
func NewItem(url string, e Extraction) *Item {
	tags := make([]string, len(e.Tags))
	copy(tags, e.Tags)
	return &Item{
		URL:         url,
		Title:       e.Title,
		Summary:     e.Summary,
		Tags:        tags,
		Source:      e.Source,
		Platform:    e.Platform,
		ContentType: e.ContentType,
	}
}

// ValidateItem checks an item before it is written to the store
func ValidateItem(i *Item) error {
	if i == nil {
		return fmt.Errorf("item cannot be nil")
	}

	if i.URL == "" {
		return fmt.Errorf("item URL is required")
	}

	if i.Title == "" {
		return fmt.Errorf("item Title is required")
	}

	if i.Summary == "" {
		return fmt.Errorf("item Summary is required")
	}

	if len(i.Tags) > MaxTags {
		return fmt.Errorf("item has %d tags, at most %d allowed", len(i.Tags), MaxTags)
	}

	if !IsValidPlatform(i.Platform) {
		return fmt.Errorf("item Platform is invalid: %s", i.Platform)
	}

	if !IsValidContentType(i.ContentType) {
		return fmt.Errorf("item ContentType is invalid: %s", i.ContentType)
	}

	return nil
}

// IsValidPlatform reports whether p is one of the known platforms
func IsValidPlatform(p Platform) bool {
	switch p {
	case PlatformYouTube, PlatformTwitter, PlatformLinkedIn, PlatformMedium, PlatformSubstack,
		PlatformSpotify, PlatformPodcast, PlatformNews, PlatformBlog, PlatformOther:
		return true
	}
	return false
}

// IsValidContentType reports whether c is one of the known content types
func IsValidContentType(c ContentType) bool {
	switch c {
	case ContentTypeArticle, ContentTypeVideo, ContentTypeAudio, ContentTypePost, ContentTypeOther:
		return true
	}
	return false
}
