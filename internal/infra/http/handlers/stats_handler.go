package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
)

type StatsGetter interface {
	Execute(ctx context.Context) (usecase.Stats, error)
}

type UpcomingMeetingsLister interface {
	Execute(ctx context.Context, limit int) ([]entity.Meeting, error)
}

type DashboardHandler struct {
	Stats    StatsGetter
	Meetings UpcomingMeetingsLister
	logger   *zap.Logger
}

func NewDashboardHandler(stats StatsGetter, meetings UpcomingMeetingsLister, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{Stats: stats, Meetings: meetings, logger: logger.Named("dashboard")}
}

// HandleStats (GET /stats)
func (h *DashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleUpcomingMeetings (GET /meetings/upcoming?limit=5)
func (h *DashboardHandler) HandleUpcomingMeetings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "limit must be a positive integer")
			return
		}
		limit = n
	}

	meetings, err := h.Meetings.Execute(r.Context(), limit)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meetings)
}
