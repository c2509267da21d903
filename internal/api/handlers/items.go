package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloo-solutions/linkshelf/internal/api"
	"github.com/cloo-solutions/linkshelf/internal/domain"
	"github.com/cloo-solutions/linkshelf/internal/pagination"
	"github.com/cloo-solutions/linkshelf/internal/service"
	"github.com/go-chi/chi/v5"
)

type ItemService interface {
	List(ctx context.Context, input service.ListInput) (*pagination.PageResult[*domain.Item], error)
	Get(ctx context.Context, id string) (*domain.Item, error)
	Related(ctx context.Context, id string, limit int) ([]*domain.Item, error)
	SnapshotURL(ctx context.Context, id string) (string, error)
	Platforms(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
	Sources(ctx context.Context) ([]string, error)
}

type ItemHandler struct {
	svc ItemService
}

func NewItemHandler(svc ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

type ListItemsResponse struct {
	Items    []*api.ItemResponse `json:"items"`
	HasMore  bool                `json:"hasMore"`
	NextPage *int                `json:"nextPage,omitempty"`
	Total    int                 `json:"total"`
}

type RelatedItemsResponse struct {
	Items []*api.ItemResponse `json:"items"`
}

type SnapshotResponse struct {
	URL string `json:"url"`
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	input := service.ListInput{
		Search:    strings.TrimSpace(q.Get("search")),
		Tags:      splitList(q["tags"]),
		Platforms: splitList(q["platforms"]),
		Sources:   splitList(q["sources"]),
		Page:      pagination.Parse(q.Get("page")).Number,
	}

	result, err := h.svc.List(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, ListItemsResponse{
		Items:    api.ItemsToResponse(result.Items),
		HasMore:  result.HasMore,
		NextPage: result.NextPage,
		Total:    result.Total,
	})
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, api.ItemToResponse(item))
}

func (h *ItemHandler) Related(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := h.svc.Related(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, RelatedItemsResponse{Items: api.ItemsToResponse(items)})
}

func (h *ItemHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.SnapshotURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, SnapshotResponse{URL: link})
}

func (h *ItemHandler) Platforms(w http.ResponseWriter, r *http.Request) {
	h.writeValues(w, r, "platforms", h.svc.Platforms)
}

func (h *ItemHandler) Tags(w http.ResponseWriter, r *http.Request) {
	h.writeValues(w, r, "tags", h.svc.Tags)
}

func (h *ItemHandler) Sources(w http.ResponseWriter, r *http.Request) {
	h.writeValues(w, r, "sources", h.svc.Sources)
}

func (h *ItemHandler) writeValues(w http.ResponseWriter, r *http.Request, key string, fetch func(context.Context) ([]string, error)) {
	values, err := fetch(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if values == nil {
		values = []string{}
	}

	api.JSON(w, http.StatusOK, map[string][]string{key: values})
}

// splitList accepts both repeated parameters and comma-separated values
func splitList(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
