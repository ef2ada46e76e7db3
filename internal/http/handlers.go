package http

import (
	"fmt"
	"net/http"
	"net/url"

	chi "github.com/go-chi/chi/v5"

	"quattrini/internal/core"
	"quattrini/internal/log"
)

// pathParam returns the unescaped value of a route parameter so names
// containing reserved characters can be addressed.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

// list keeps empty collections encoding as [] rather than null.
func list[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

// fail writes the mapped error response. Internal errors are logged in
// full, rejected input only at debug level.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	fields := log.NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, routePattern(r), "").
		WithErrorType(errorType(statusFor(err)))
	if statusFor(err) == http.StatusInternalServerError {
		s.access.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, fields)
	} else {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
			fields.WithError(err).WithOperation(op).ToSlice()...)
	}
	ErrorFor(err).Write(w)
}

func errorType(status int) string {
	switch status {
	case http.StatusNotFound:
		return log.ErrorTypeNotFound
	case http.StatusConflict:
		return log.ErrorTypeConflict
	case http.StatusUnprocessableEntity:
		return log.ErrorTypeValidation
	default:
		return log.ErrorTypeInternal
	}
}

func (s *Server) mutated(r *http.Request, op, entity, id string) {
	s.access.LogMutation(r.Context(), op, entity, id)
}

// cachedView serves an encoded derived view, building it on a miss. Keys
// carry the tracker version and today's date so any mutation or a change
// of day invalidates them.
func (s *Server) cachedView(w http.ResponseWriter, r *http.Request, build func() any) {
	key := fmt.Sprintf("%s?%s#v%d@%s", r.URL.Path, r.URL.RawQuery, s.tracker.Version(), core.DateOf(s.now()))
	if body, ok := s.views.Get(key); ok {
		responseCacheLookups.WithLabelValues("hit").Inc()
		NewJSONResponse().Header("X-Cache", "HIT").Raw(body).Write(w)
		return
	}
	responseCacheLookups.WithLabelValues("miss").Inc()

	resp := NewJSONResponse().JSON(build())
	if body, err := resp.Bytes(); err == nil {
		s.views.Set(key, body)
	}
	resp.Header("X-Cache", "MISS").Write(w)
}
