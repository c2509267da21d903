package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/linkshelf/internal/api"
	"github.com/cloo-solutions/linkshelf/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func doSave(h *SaveHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/save", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Save(w, req)
	return w
}

func decodeSave(t *testing.T, w *httptest.ResponseRecorder) api.SaveResponse {
	t.Helper()
	var resp api.SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSaveHandler_Success(t *testing.T) {
	svc := new(MockIngestService)
	item := newTestItem("item-1")
	svc.On("Save", mock.Anything, "https://medium.com/@writer/go-patterns").Return(item, nil)

	w := doSave(NewSaveHandler(svc), `{"url":"https://medium.com/@writer/go-patterns"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeSave(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Item)
	assert.Equal(t, "item-1", resp.Item.ID)
	assert.Equal(t, []string{"go", "patterns", "backend"}, resp.Item.Tags)
	assert.Equal(t, "medium", resp.Item.Platform)
	assert.Equal(t, "article", resp.Item.ContentType)
	assert.Equal(t, "2026-02-14T08:00:00Z", resp.Item.CreatedAt)
	svc.AssertExpectations(t)
}

func TestSaveHandler_SharedText(t *testing.T) {
	svc := new(MockIngestService)
	svc.On("Save", mock.Anything, "https://youtu.be/abc123").Return(newTestItem("item-2"), nil)

	w := doSave(NewSaveHandler(svc), `{"text":"Watch this! https://youtu.be/abc123."}`)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSaveHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		saveArg    string
		err        error
		wantStatus int
		wantError  string
	}{
		{"missing url", `{}`, "", domain.ErrURLRequired, http.StatusBadRequest, "URL is required"},
		{"invalid url", `{"url":"not a url"}`, "not a url", domain.ErrInvalidURL, http.StatusBadRequest, "Invalid URL format"},
		{"duplicate", `{"url":"https://example.com/a"}`, "https://example.com/a", domain.ErrURLAlreadyExists, http.StatusConflict, "URL already exists in your library"},
		{"storage failure", `{"url":"https://example.com/b"}`, "https://example.com/b", domain.ErrStorageFailure.WithCause(errors.New("pool closed")), http.StatusInternalServerError, "Failed to save item"},
		{"unexpected", `{"url":"https://example.com/c"}`, "https://example.com/c", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockIngestService)
			svc.On("Save", mock.Anything, tt.saveArg).Return(nil, tt.err)

			w := doSave(NewSaveHandler(svc), tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeSave(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Nil(t, resp.Item)
		})
	}
}

func TestSaveHandler_MalformedBody(t *testing.T) {
	svc := new(MockIngestService)

	for _, body := range []string{`{"url":`, ``, `{"url": 42}`} {
		w := doSave(NewSaveHandler(svc), body)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		resp := decodeSave(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "Invalid request body", resp.Error)
	}

	svc.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
