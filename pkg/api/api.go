// Package api serves the studio over HTTP.
//
//	POST   /compositions           generate from a JSON studio.Request
//	GET    /compositions?limit=N   newest first
//	GET    /compositions/{id}
//	GET    /compositions/{id}/midi Standard MIDI File
//	GET    /compositions/{id}/stats
//	DELETE /compositions/{id}
//	GET    /scales
//	GET    /healthz
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Malifforas/music/pkg/analysis"
	"github.com/Malifforas/music/pkg/compose"
	"github.com/Malifforas/music/pkg/library"
	"github.com/Malifforas/music/pkg/studio"
	"github.com/Malifforas/music/pkg/theory"
)

// DefaultListLimit caps GET /compositions without a limit parameter.
const DefaultListLimit = 20

// maxRequestBody bounds POST bodies.
const maxRequestBody = 64 << 10

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	ID    string `json:"id,omitempty"`
}

// Scale is an entry of GET /scales.
type Scale struct {
	Name    string `json:"name"`
	Degrees []int  `json:"degrees"`
}

// Studio is the subset of *studio.Studio the handler needs.
type Studio interface {
	Generate(ctx context.Context, req studio.Request) (*library.Record, error)
	Get(ctx context.Context, id string) (*library.Record, error)
	List(ctx context.Context, limit int) ([]*library.Record, error)
	MIDI(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

type handler struct {
	studio Studio
	logger *slog.Logger
}

// Err writes err as a JSON error with the status it maps to.
func (h *handler) Err(w http.ResponseWriter, err error, id string) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	} else {
		h.logger.Debug("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, ErrorBody{Error: err.Error(), ID: id})
}

// StatusOf maps an error to an HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, studio.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case compose.IsGenerationError(err):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req studio.Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && err != io.EOF {
		h.Err(w, fmt.Errorf("%w: %w", studio.ErrInvalidRequest, err), "")
		return
	}

	rec, err := h.studio.Generate(r.Context(), req)
	if err != nil {
		id := ""
		if rec != nil {
			id = rec.ID
		}
		h.Err(w, err, id)
		return
	}
	w.Header().Set("Location", "/compositions/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (h *handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.Err(w, fmt.Errorf("%w: limit %q", studio.ErrInvalidRequest, s), "")
			return
		}
		limit = n
	}
	recs, err := h.studio.List(r.Context(), limit)
	if err != nil {
		h.Err(w, err, "")
		return
	}
	if recs == nil {
		recs = []*library.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := h.studio.Get(r.Context(), id)
	if err != nil {
		h.Err(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) handleMIDI(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	data, err := h.studio.MIDI(r.Context(), id)
	if err != nil {
		h.Err(w, err, id)
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".mid"))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := h.studio.Get(r.Context(), id)
	if err != nil {
		h.Err(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, analysis.Summarize(&rec.Composition))
}

func (h *handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.studio.Delete(r.Context(), id); err != nil {
		h.Err(w, err, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleScales(w http.ResponseWriter, _ *http.Request) {
	names := theory.ScaleNames()
	scales := make([]Scale, 0, len(names))
	for _, name := range names {
		degrees := theory.Degrees(name)
		s := Scale{Name: name, Degrees: make([]int, len(degrees))}
		for i, d := range degrees {
			s.Degrees[i] = int(d)
		}
		scales = append(scales, s)
	}
	writeJSON(w, http.StatusOK, scales)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewHandler returns the HTTP handler for s. A nil logger uses
// slog.Default().
func NewHandler(s Studio, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{studio: s, logger: logger}

	sr := mux.NewRouter()
	sr.HandleFunc("/compositions", h.handleCreate).Methods(http.MethodPost)
	sr.HandleFunc("/compositions", h.handleList).Methods(http.MethodGet)
	sr.HandleFunc("/compositions/{id}", h.handleGet).Methods(http.MethodGet)
	sr.HandleFunc("/compositions/{id}", h.handleDelete).Methods(http.MethodDelete)
	sr.HandleFunc("/compositions/{id}/midi", h.handleMIDI).Methods(http.MethodGet)
	sr.HandleFunc("/compositions/{id}/stats", h.handleStats).Methods(http.MethodGet)
	sr.HandleFunc("/scales", handleScales).Methods(http.MethodGet)
	sr.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.PathPrefix("/").Handler(sr)
	return r
}
