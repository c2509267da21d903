// Package classifier maps a URL to the platform it most likely came from.
package classifier

import (
	"strings"

	"github.com/cloo-solutions/linkshelf/internal/domain"
)

type rule struct {
	needles  []string
	platform domain.Platform
}

// rules are tried in order and the first match wins.
var rules = []rule{
	{[]string{"youtube.com", "youtu.be"}, domain.PlatformYouTube},
	{[]string{"twitter.com", "x.com"}, domain.PlatformTwitter},
	{[]string{"linkedin.com"}, domain.PlatformLinkedIn},
	{[]string{"medium.com"}, domain.PlatformMedium},
	{[]string{"substack.com"}, domain.PlatformSubstack},
	{[]string{"spotify.com"}, domain.PlatformSpotify},
	{[]string{"podcasts.apple.com", "anchor.fm"}, domain.PlatformPodcast},
	{newsSites, domain.PlatformNews},
}

var newsSites = []string{
	"ynet", "walla", "haaretz", "calcalist", "themarker", "globes", "bbc", "cnn", "nytimes",
}

// Classify returns the platform for rawURL by case-insensitive substring match.
// Unknown URLs are classified as blog. It never fails.
func Classify(rawURL string) domain.Platform {
	lower := strings.ToLower(rawURL)
	for _, r := range rules {
		for _, needle := range r.needles {
			if strings.Contains(lower, needle) {
				return r.platform
			}
		}
	}
	return domain.PlatformBlog
}
