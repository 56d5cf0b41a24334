package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"solace/internal/bootstrap/logging"
	"solace/internal/domain/journal"
	"solace/internal/errs"
	"solace/internal/ports"
	"solace/internal/usecase/pipeline"
)

const userIDHeader = "X-User-ID"

// Server is the ingestion HTTP surface: drafts in, submissions in, entry
// and capsule state out.
type Server struct {
	service *pipeline.Service
	http    *http.Server
}

func NewServer(addr string, service *pipeline.Service) *Server {
	s := &Server{service: service}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/entries", s.handleCreateEntry)
		r.Post("/entries/{entryID}/submit", s.handleSubmitEntry)
		r.Get("/entries/{entryID}", s.handleGetEntry)
		r.Get("/capsules/{capsuleID}", s.handleGetCapsule)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type createEntryRequest struct {
	Text   string `json:"text"`
	Submit bool   `json:"submit"`
}

type entryResponse struct {
	EntryID        string  `json:"entryId"`
	State          string  `json:"state"`
	CapsuleReadyID *string `json:"capsuleReadyId,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	SubmittedAt    *string `json:"submittedAt,omitempty"`
}

type capsuleResponse struct {
	CapsuleID string          `json:"capsuleId"`
	EntryID   string          `json:"entryId"`
	Type      string          `json:"type"`
	State     string          `json:"state"`
	Fallback  bool            `json:"fallback"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	ReadyAt   *string         `json:"readyAt,omitempty"`
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return
	}

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// submit=true is the one-shot path: draft and submit in one request.
	var entry ports.EntryRecord
	var err error
	if req.Submit {
		entry, err = s.service.SubmitText(r.Context(), userID, req.Text)
	} else {
		entry, err = s.service.CreateDraftEntry(r.Context(), userID, req.Text)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (s *Server) handleSubmitEntry(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return
	}

	entry, err := s.service.SubmitEntry(r.Context(), userID, chi.URLParam(r, "entryID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return
	}

	entry, err := s.service.GetEntry(r.Context(), userID, chi.URLParam(r, "entryID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (s *Server) handleGetCapsule(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return
	}

	capsule, err := s.service.GetCapsuleForUser(r.Context(), userID, chi.URLParam(r, "capsuleID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := capsuleResponse{
		CapsuleID: capsule.CapsuleID,
		EntryID:   capsule.EntryID,
		Type:      capsule.Type,
		State:     capsule.State,
		Fallback:  capsule.Fallback,
		ReadyAt:   capsule.ReadyAt,
	}
	if capsule.PayloadJSON != "" {
		resp.Payload = json.RawMessage(capsule.PayloadJSON)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var rateErr *journal.RateLimitError
	switch {
	case errors.As(err, &rateErr):
		retryAfterSec := (rateErr.RetryAfterMs + 999) / 1000
		w.Header().Set("Retry-After", strconv.FormatInt(retryAfterSec, 10))
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	case errors.Is(err, journal.ErrTextTooShort):
		writeError(w, http.StatusUnprocessableEntity, "entry text is too short")
	case errors.Is(err, journal.ErrSubmissionBlocked):
		writeError(w, http.StatusForbidden, "submission blocked by content policy")
	case errors.Is(err, ports.ErrEntryNotFound), errors.Is(err, ports.ErrCapsuleNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		logging.Error(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", errs.Loggable(err)),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toEntryResponse(entry ports.EntryRecord) entryResponse {
	return entryResponse{
		EntryID:        entry.EntryID,
		State:          entry.State,
		CapsuleReadyID: entry.CapsuleReadyID,
		CreatedAt:      entry.CreatedAt,
		SubmittedAt:    entry.SubmittedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
