package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cloo-solutions/linkshelf/internal/api"
	"github.com/cloo-solutions/linkshelf/internal/domain"
	"github.com/cloo-solutions/linkshelf/internal/service"
)

type IngestService interface {
	Save(ctx context.Context, rawURL string) (*domain.Item, error)
}

type SaveHandler struct {
	svc IngestService
}

func NewSaveHandler(svc IngestService) *SaveHandler {
	return &SaveHandler{svc: svc}
}

// SaveRequest accepts either a bare URL or text shared from another app
type SaveRequest struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

func (h *SaveHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.SaveFailure(w, http.StatusRequestEntityTooLarge, api.BodyTooLargeMessage)
			return
		}
		api.SaveFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link := req.URL
	if strings.TrimSpace(link) == "" && req.Text != "" {
		link = service.FirstURL(req.Text)
	}

	item, err := h.svc.Save(r.Context(), link)
	if err != nil {
		api.HandleSaveError(w, err)
		return
	}

	api.SaveSuccess(w, item)
}
