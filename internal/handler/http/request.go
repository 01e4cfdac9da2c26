package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// maxUploadSize bounds multipart bodies (leave attachments, company logo).
const maxUploadSize = 10 << 20

// decodeJSON decodes the body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, name string, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(name+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

type validatable interface {
	Validate() error
}

// bind decodes and validates the body. It writes the error response itself
// and reports whether the handler should continue.
func bind(w http.ResponseWriter, r *http.Request, name string, dst validatable) bool {
	if !decodeJSON(w, r, name, dst) {
		return false
	}
	if err := dst.Validate(); err != nil {
		response.HandleError(w, err)
		return false
	}
	return true
}

// queryString returns a pointer to a non-empty query value.
func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// pagination reads page, limit, sort_by and sort_order. Validation of the
// values is left to the filter.
func pagination(r *http.Request) (page, limit int, sortBy, sortOrder string) {
	q := r.URL.Query()
	return getIntQueryParam(r, "page", 1), getIntQueryParam(r, "limit", 20), q.Get("sort_by"), q.Get("sort_order")
}

// pathID returns the {id} URL parameter, writing a 400 when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "id must be a valid UUID", nil)
		return "", false
	}
	return id, true
}
