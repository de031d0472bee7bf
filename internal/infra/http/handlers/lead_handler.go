package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/auth"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
)

const defaultKeepAlive = 25 * time.Second

type LeadCreator interface {
	Execute(ctx context.Context, input usecase.CreateLeadInput) (*usecase.CreateLeadOutput, error)
}

type LeadLister interface {
	Execute(ctx context.Context, order entity.LeadOrder) ([]entity.Lead, error)
}

type LeadUpdater interface {
	Execute(ctx context.Context, leadID string, input usecase.UpdateLeadInput) (*entity.Lead, error)
}

// ChangeSubscriber is satisfied by *notify.Hub.
type ChangeSubscriber interface {
	Subscribe(ownerID string, onChange func()) (unsubscribe func())
}

type LeadHandler struct {
	Create      LeadCreator
	List        LeadLister
	Update      LeadUpdater
	Changes     ChangeSubscriber
	rateLimiter *RateLimiter
	keepAlive   time.Duration
	logger      *zap.Logger
}

func NewLeadHandler(create LeadCreator, list LeadLister, update LeadUpdater, changes ChangeSubscriber, limiter *RateLimiter, logger *zap.Logger) *LeadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{
		Create:      create,
		List:        list,
		Update:      update,
		Changes:     changes,
		rateLimiter: limiter,
		keepAlive:   defaultKeepAlive,
		logger:      logger.Named("leads"),
	}
}

// HandleCreate (POST /leads)
func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil {
		key, _ := auth.UserFromContext(r.Context())
		if key == "" {
			key = getClientIP(r)
		}
		if !h.rateLimiter.Allow(key) {
			writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
			return
		}
	}

	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	output, err := h.Create.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, output)
}

// HandleList (GET /leads?order=created_desc)
func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	order := entity.LeadOrder(r.URL.Query().Get("order"))

	leads, err := h.List.Execute(r.Context(), order)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, leads)
}

// HandleUpdate (PATCH /leads/{id})
func (h *LeadHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")
	if leadID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_ID", "lead id is required")
		return
	}

	var input usecase.UpdateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	lead, err := h.Update.Execute(r.Context(), leadID, input)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// HandleStream (GET /leads/stream) is a Server-Sent Events feed. It sends
// "ready" once subscribed and "change" whenever the caller's leads changed;
// clients re-fetch on either.
func (h *LeadHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.RequireUser(r.Context())
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorResponse(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "streaming is not supported")
		return
	}

	signals := make(chan struct{}, 1)
	unsubscribe := h.Changes.Subscribe(owner, func() {
		select {
		case signals <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, "ready")
	flusher.Flush()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-signals:
			writeEvent(w, "change")
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string) {
	fmt.Fprintf(w, "event: %s\ndata: {}\n\n", event)
}
