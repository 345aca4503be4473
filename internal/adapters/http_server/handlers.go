// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/insights"
	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/adapters/unsplash"
	"flex_reviews/internal/app"
)

type Handlers struct {
	Q        *app.ListingQueryService
	C        *app.CurationService
	Detector *insights.Detector
	Images   *unsplash.Client
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/reviews/hostaway", h.listListings)
	s.mux.Get("/v1/reviews/bad", h.badReviews)
	s.mux.Get("/v1/reviews/google", h.googleReviews)
	s.mux.Post("/v1/reviews/{id}/approve", h.approveReview)
	s.mux.Delete("/v1/reviews/{id}", h.deleteReview)
	s.mux.Get("/v1/images", h.lookupImage)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	filters := app.ParseFilters(r.URL.Query())
	resp, err := h.Q.NormalizedListings(r.Context(), filters)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Store Unavailable", "could not read reviews")
		return
	}

	etag, body := calcETagAndBody(resp)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listings body")
	}
}

func (h *Handlers) approveReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	// Optional body {"approved": bool}; absent or malformed means toggle.
	var approved *bool
	var body struct {
		Approved *bool `json:"approved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
		approved = body.Approved
	}

	res, err := h.C.SetApproval(r.Context(), id, approved)
	if err != nil {
		observability.ObserveMutation("approve", "error")
		writeProblem(w, http.StatusInternalServerError, "Store Unavailable", "could not update review")
		return
	}
	if !res.Success {
		observability.ObserveMutation("approve", "not_found")
		writeProblem(w, http.StatusNotFound, "Not Found", "no such review")
		return
	}
	observability.ObserveMutation("approve", "ok")
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	ok, err := h.C.Delete(r.Context(), id)
	if err != nil {
		observability.ObserveMutation("delete", "error")
		writeProblem(w, http.StatusInternalServerError, "Store Unavailable", "could not delete review")
		return
	}
	status := http.StatusOK
	outcome := "ok"
	if !ok {
		status = http.StatusNotFound
		outcome = "not_found"
	}
	observability.ObserveMutation("delete", outcome)
	writeJSON(w, status, map[string]bool{"success": ok})
}

func (h *Handlers) badReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Q.AllReviews(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Store Unavailable", "could not read reviews")
		return
	}
	writeJSON(w, http.StatusOK, h.Detector.Detect(r.Context(), reviews))
}

func (h *Handlers) lookupImage(w http.ResponseWriter, r *http.Request) {
	url := h.Images.LookupURL(r.Context(), r.URL.Query().Get("query"))
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Google Places reviews are not wired up; the route documents the gap so
// dashboard links don't dead-end on a 404.
func (h *Handlers) googleReviews(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("placeId") == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "placeId is required")
		return
	}
	writeProblem(w, http.StatusNotImplemented, "Not Implemented", "Google Reviews integration is not available")
}
