//go:build e2e

package e2e

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/linkshelf/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemJSON struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	Source      string   `json:"source"`
	Platform    string   `json:"platform"`
	ContentType string   `json:"content_type"`
	CreatedAt   string   `json:"created_at"`
}

type saveJSON struct {
	Success bool      `json:"success"`
	Item    *itemJSON `json:"item"`
	Error   string    `json:"error"`
}

type listJSON struct {
	Items    []itemJSON `json:"items"`
	HasMore  bool       `json:"hasMore"`
	NextPage int        `json:"nextPage"`
	Total    int        `json:"total"`
}

// TestE2E_SaveAndBrowse saves links over HTTP and reads them back
func TestE2E_SaveAndBrowse(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	pageURL := env.PageURL("/go-pipelines")
	var saved itemJSON

	t.Run("save url", func(t *testing.T) {
		var resp saveJSON
		status := env.Post("/api/save", map[string]string{"url": "  " + pageURL + "  "}, &resp)
		require.Equal(t, http.StatusOK, status)
		require.True(t, resp.Success)
		require.NotNil(t, resp.Item)

		saved = *resp.Item
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, pageURL, saved.URL)
		assert.Equal(t, "Go concurrency patterns", saved.Title)
		assert.Equal(t, []string{"go", "concurrency", "patterns"}, saved.Tags)
		assert.Equal(t, "blog", saved.Platform)
		assert.Equal(t, "article", saved.ContentType)
		_, err := time.Parse(time.RFC3339Nano, saved.CreatedAt)
		assert.NoError(t, err)
	})

	t.Run("duplicate url is rejected", func(t *testing.T) {
		var resp saveJSON
		status := env.Post("/api/save", map[string]string{"url": pageURL}, &resp)
		assert.Equal(t, http.StatusConflict, status)
		assert.False(t, resp.Success)
		assert.Equal(t, "URL already exists in your library", resp.Error)
	})

	t.Run("missing url", func(t *testing.T) {
		var resp saveJSON
		status := env.Post("/api/save", map[string]string{"url": "   "}, &resp)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "URL is required", resp.Error)
	})

	t.Run("invalid url", func(t *testing.T) {
		var resp saveJSON
		status := env.Post("/api/save", map[string]string{"url": "not a url"}, &resp)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid URL format", resp.Error)
	})

	t.Run("save from shared text", func(t *testing.T) {
		var resp saveJSON
		status := env.Post("/api/save", map[string]string{
			"text": "worth reading " + env.PageURL("/shared") + " later",
		}, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, env.PageURL("/shared"), resp.Item.URL)
	})

	t.Run("list and search", func(t *testing.T) {
		var list listJSON
		require.Equal(t, http.StatusOK, env.Get("/api/items", &list))
		assert.Equal(t, 2, list.Total)
		assert.False(t, list.HasMore)
		require.Len(t, list.Items, 2)
		assert.Equal(t, env.PageURL("/shared"), list.Items[0].URL)

		var filtered listJSON
		require.Equal(t, http.StatusOK, env.Get("/api/items?tags=concurrency&platforms=blog&search=pipelines", &filtered))
		assert.Equal(t, 2, filtered.Total)

		var none listJSON
		require.Equal(t, http.StatusOK, env.Get("/api/items?tags=rust", &none))
		assert.Equal(t, 0, none.Total)
		assert.NotNil(t, none.Items)
	})

	t.Run("get item", func(t *testing.T) {
		var item itemJSON
		require.Equal(t, http.StatusOK, env.Get("/api/items/"+saved.ID, &item))
		assert.Equal(t, saved, item)

		var errResp struct {
			Error string `json:"error"`
		}
		status := env.Get("/api/items/00000000-0000-0000-0000-000000000000", &errResp)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Item not found", errResp.Error)
	})

	t.Run("facets", func(t *testing.T) {
		var tags struct {
			Tags []string `json:"tags"`
		}
		require.Equal(t, http.StatusOK, env.Get("/api/tags", &tags))
		assert.Equal(t, []string{"concurrency", "go", "patterns"}, tags.Tags)

		var platforms struct {
			Platforms []string `json:"platforms"`
		}
		require.Equal(t, http.StatusOK, env.Get("/api/platforms", &platforms))
		assert.Equal(t, []string{"blog"}, platforms.Platforms)

		var sources struct {
			Sources []string `json:"sources"`
		}
		require.Equal(t, http.StatusOK, env.Get("/api/sources", &sources))
		assert.Equal(t, []string{"Example Blog"}, sources.Sources)
	})

	t.Run("snapshot download", func(t *testing.T) {
		var snap struct {
			URL string `json:"url"`
		}
		require.Eventually(t, func() bool {
			return env.Get("/api/items/"+saved.ID+"/snapshot", &snap) == http.StatusOK
		}, 10*time.Second, 200*time.Millisecond)

		resp, err := env.HTTPClient.Get(snap.URL)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Pipelines connect stages with channels.")
		assert.NotContains(t, string(body), "var x")
	})

	t.Run("related items after embedding", func(t *testing.T) {
		var related struct {
			Items []itemJSON `json:"items"`
		}
		require.Eventually(t, func() bool {
			status := env.Get("/api/items/"+saved.ID+"/related", &related)
			return status == http.StatusOK && len(related.Items) == 1
		}, 20*time.Second, 250*time.Millisecond)
		assert.Equal(t, env.PageURL("/shared"), related.Items[0].URL)

		status := env.Get("/api/items/"+saved.ID+"/related?limit=zero", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("empty library", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(env.Ctx, env.Pool))

		var list listJSON
		require.Equal(t, http.StatusOK, env.Get("/api/items", &list))
		assert.Equal(t, 0, list.Total)
		assert.Empty(t, list.Items)

		var resp saveJSON
		status := env.Post("/api/save", map[string]string{"url": pageURL}, &resp)
		assert.Equal(t, http.StatusOK, status, "a deleted URL can be saved again")
	})
}

// TestE2E_FallbackExtraction saves a link while the AI answers with prose
func TestE2E_FallbackExtraction(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.AI.Answer.Store("Sure! Here is the analysis you asked for.")

	var resp saveJSON
	status := env.Post("/api/save", map[string]string{"url": env.PageURL("/youtube.com/watch")}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Item)

	assert.Equal(t, "New content", resp.Item.Title)
	assert.Equal(t, "Could not process automatically", resp.Item.Summary)
	assert.Equal(t, []string{"to classify"}, resp.Item.Tags)
	assert.Equal(t, "127.0.0.1", resp.Item.Source)
	assert.Equal(t, "youtube", resp.Item.Platform)
	assert.Equal(t, "other", resp.Item.ContentType)
}

// TestE2E_CLIWorkflow drives the linkshelf CLI against a running server
func TestE2E_CLIWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping CLI workflow in short mode")
	}

	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.BuildBinaries()

	pageURL := env.PageURL("/cli-article")

	t.Run("save", func(t *testing.T) {
		out, err := env.RunLinkshelf("save", pageURL)
		require.NoError(t, err, out)
		assert.Contains(t, out, "Saved: Go concurrency patterns")
		assert.Contains(t, out, "Tags: go, concurrency, patterns")
	})

	t.Run("save duplicate fails", func(t *testing.T) {
		out, err := env.RunLinkshelf("save", pageURL)
		require.Error(t, err)
		assert.Contains(t, out, "URL already exists in your library")
	})

	t.Run("list", func(t *testing.T) {
		out, err := env.RunLinkshelf("list")
		require.NoError(t, err, out)
		assert.Contains(t, out, "Go concurrency patterns")
		assert.Contains(t, out, "1 of 1 items")
	})

	t.Run("list as json", func(t *testing.T) {
		out, err := env.RunLinkshelf("list", "--output", "json", "--tag", "go")
		require.NoError(t, err, out)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
		assert.Contains(t, out, pageURL)
	})

	t.Run("tags", func(t *testing.T) {
		out, err := env.RunLinkshelf("tags")
		require.NoError(t, err, out)
		assert.Contains(t, out, "concurrency")
	})
}
