package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cloo-solutions/linkshelf/internal/domain"
)

// InternalErrorMessage is returned for failures that are not domain errors
const InternalErrorMessage = "Internal server error"

// BodyTooLargeMessage is returned when a request body exceeds the configured limit
const BodyTooLargeMessage = "Request body too large"

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SaveResponse is the envelope of POST /api/save
type SaveResponse struct {
	Success bool          `json:"success"`
	Item    *ItemResponse `json:"item,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ItemResponse is the wire form of a saved item
type ItemResponse struct {
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

// ItemToResponse converts a domain item to its wire form
func ItemToResponse(i *domain.Item) *ItemResponse {
	tags := i.Tags
	if tags == nil {
		tags = []string{}
	}
	return &ItemResponse{
		ID:          i.ID,
		URL:         i.URL,
		Title:       i.Title,
		Summary:     i.Summary,
		Tags:        tags,
		Source:      i.Source,
		Platform:    string(i.Platform),
		ContentType: string(i.ContentType),
		CreatedAt:   i.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// ItemsToResponse converts a slice of items, never returning nil
func ItemsToResponse(items []*domain.Item) []*ItemResponse {
	out := make([]*ItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, ItemToResponse(i))
	}
	return out
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// SaveSuccess writes the success envelope for a saved item
func SaveSuccess(w http.ResponseWriter, item *domain.Item) {
	JSON(w, http.StatusOK, SaveResponse{Success: true, Item: ItemToResponse(item)})
}

// SaveFailure writes the failure envelope for a save request
func SaveFailure(w http.ResponseWriter, status int, message string) {
	JSON(w, status, SaveResponse{Success: false, Error: message})
}

// DomainErrorToHTTP maps domain errors to HTTP status codes
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}

	switch domainErr.Code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the client-facing message for err. Causes are never exposed.
func ErrorMessage(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return InternalErrorMessage
}

// HandleError writes an appropriate error response based on the error type
func HandleError(w http.ResponseWriter, err error) {
	Error(w, DomainErrorToHTTP(err), ErrorMessage(err))
}

// HandleSaveError writes the save failure envelope for err
func HandleSaveError(w http.ResponseWriter, err error) {
	SaveFailure(w, DomainErrorToHTTP(err), ErrorMessage(err))
}
