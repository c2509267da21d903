package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot(cmds ...*cobra.Command) *cobra.Command {
	root := &cobra.Command{Use: "linkshelf", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().Bool("output", false, "Output as JSON")
	root.PersistentFlags().String("api-url", "", "API base URL")
	root.AddCommand(cmds...)
	return root
}

func execute(t *testing.T, root *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestAPIClient_GetWithQuery(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/items", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"items":[],"hasMore":false,"total":0}`))
	}))
	defer srv.Close()

	var resp ListAPIResponse
	err := NewAPIClientWithConfig(srv.URL+"/").Get("/api/items", url.Values{"search": {"go"}}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "go", gotQuery.Get("search"))
	assert.Equal(t, 0, resp.Total)
}

func TestAPIClient_PostSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body SaveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com", body.URL)
		w.Write([]byte(`{"success":true,"item":{"id":"1"}}`))
	}))
	defer srv.Close()

	var resp SaveResponse
	require.NoError(t, NewAPIClientWithConfig(srv.URL).Post("/api/save", SaveRequest{URL: "https://example.com"}, &resp))
	assert.True(t, resp.Success)
}

func TestAPIClient_ErrorShapes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"plain error", http.StatusNotFound, `{"error":"Item not found"}`, "Item not found"},
		{"save envelope", http.StatusConflict, `{"success":false,"error":"URL already exists in your library"}`, "URL already exists in your library"},
		{"non json", http.StatusBadGateway, "bad gateway\n", "bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewAPIClientWithConfig(srv.URL).Get("/x", nil, nil)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestAPIClient_InvalidJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := NewAPIClientWithConfig(srv.URL).Get("/x", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestNewAPIClientWithCmd_UsesFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "list"}
	cmd.Flags().String("api-url", "", "")
	require.NoError(t, cmd.Flags().Set("api-url", "http://flag:1234/"))

	api, err := NewAPIClientWithCmd(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://flag:1234", api.baseURL)
}
