package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/linkshelf/internal/domain"
	"github.com/cloo-solutions/linkshelf/internal/pagination"
	"github.com/cloo-solutions/linkshelf/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestItemHandler_List(t *testing.T) {
	svc := new(MockItemService)
	next := 3
	result := &pagination.PageResult[*domain.Item]{
		Items:    []*domain.Item{newTestItem("item-1")},
		HasMore:  true,
		NextPage: &next,
		Total:    45,
	}
	svc.On("List", mock.Anything, service.ListInput{
		Search:    "go",
		Tags:      []string{"go", "backend"},
		Platforms: []string{"medium", "youtube"},
		Sources:   []string{"Medium"},
		Page:      2,
	}).Return(result, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/items?search=+go+&tags=go,backend&platforms=medium&platforms=youtube&sources=Medium&page=2", nil)
	w := httptest.NewRecorder()
	NewItemHandler(svc).List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ListItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "item-1", resp.Items[0].ID)
	assert.True(t, resp.HasMore)
	require.NotNil(t, resp.NextPage)
	assert.Equal(t, 3, *resp.NextPage)
	assert.Equal(t, 45, resp.Total)
	svc.AssertExpectations(t)
}

func TestItemHandler_List_DefaultsAndEmpty(t *testing.T) {
	svc := new(MockItemService)
	empty := pagination.NewPageResult[*domain.Item](nil, pagination.New(1), 0)
	svc.On("List", mock.Anything, service.ListInput{Page: 1}).Return(&empty, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/items?page=abc", nil)
	w := httptest.NewRecorder()
	NewItemHandler(svc).List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"hasMore":false,"total":0}`, w.Body.String())
}

func TestItemHandler_List_Error(t *testing.T) {
	svc := new(MockItemService)
	svc.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	w := httptest.NewRecorder()
	NewItemHandler(svc).List(w, httptest.NewRequest(http.MethodGet, "/api/items", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestItemHandler_Get(t *testing.T) {
	svc := new(MockItemService)
	svc.On("Get", mock.Anything, "item-1").Return(newTestItem("item-1"), nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/items/item-1", nil), "id", "item-1")
	w := httptest.NewRecorder()
	NewItemHandler(svc).Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "item-1", resp["id"])
	assert.Equal(t, "Go patterns", resp["title"])
	assert.Equal(t, "article", resp["content_type"])
	assert.Equal(t, "2026-02-14T08:00:00Z", resp["created_at"])
}

func TestItemHandler_Get_NotFound(t *testing.T) {
	svc := new(MockItemService)
	svc.On("Get", mock.Anything, "missing").Return(nil, domain.ErrItemNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/items/missing", nil), "id", "missing")
	w := httptest.NewRecorder()
	NewItemHandler(svc).Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Item not found"}`, w.Body.String())
}

func TestItemHandler_Related(t *testing.T) {
	svc := new(MockItemService)
	svc.On("Related", mock.Anything, "item-1", 3).Return([]*domain.Item{newTestItem("item-2")}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/items/item-1/related?limit=3", nil), "id", "item-1")
	w := httptest.NewRecorder()
	NewItemHandler(svc).Related(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp RelatedItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "item-2", resp.Items[0].ID)
}

func TestItemHandler_Related_DefaultLimitAndEmpty(t *testing.T) {
	svc := new(MockItemService)
	svc.On("Related", mock.Anything, "item-1", 0).Return(nil, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/items/item-1/related", nil), "id", "item-1")
	w := httptest.NewRecorder()
	NewItemHandler(svc).Related(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestItemHandler_Related_BadLimit(t *testing.T) {
	svc := new(MockItemService)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/items/item-1/related?limit=-1", nil), "id", "item-1")
	w := httptest.NewRecorder()
	NewItemHandler(svc).Related(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Related", mock.Anything, mock.Anything, mock.Anything)
}

func TestItemHandler_Snapshot(t *testing.T) {
	svc := new(MockItemService)
	svc.On("SnapshotURL", mock.Anything, "item-1").Return("https://s3.local/snapshots/item-1.txt?sig=x", nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/items/item-1/snapshot", nil), "id", "item-1")
	w := httptest.NewRecorder()
	NewItemHandler(svc).Snapshot(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":"https://s3.local/snapshots/item-1.txt?sig=x"}`, w.Body.String())
}

func TestItemHandler_Snapshot_NotFound(t *testing.T) {
	svc := new(MockItemService)
	svc.On("SnapshotURL", mock.Anything, "item-1").Return("", domain.ErrSnapshotNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/items/item-1/snapshot", nil), "id", "item-1")
	w := httptest.NewRecorder()
	NewItemHandler(svc).Snapshot(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Snapshot not found"}`, w.Body.String())
}

func TestItemHandler_Facets(t *testing.T) {
	svc := new(MockItemService)
	svc.On("Platforms", mock.Anything).Return([]string{"medium", "youtube"}, nil)
	svc.On("Tags", mock.Anything).Return(nil, nil)
	svc.On("Sources", mock.Anything).Return(nil, errors.New("db down"))
	h := NewItemHandler(svc)

	w := httptest.NewRecorder()
	h.Platforms(w, httptest.NewRequest(http.MethodGet, "/api/platforms", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"platforms":["medium","youtube"]}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Tags(w, httptest.NewRequest(http.MethodGet, "/api/tags", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tags":[]}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Sources(w, httptest.NewRequest(http.MethodGet, "/api/sources", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(nil))
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " ", "c,"}))
}
