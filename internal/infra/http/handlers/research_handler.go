package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/auth"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
)

type CompanyResearcher interface {
	Execute(ctx context.Context, input usecase.ResearchLeadInput) (*usecase.ResearchLeadOutput, error)
}

type ResearchHandler struct {
	Research    CompanyResearcher
	rateLimiter *RateLimiter
	logger      *zap.Logger
}

func NewResearchHandler(research CompanyResearcher, limiter *RateLimiter, logger *zap.Logger) *ResearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResearchHandler{Research: research, rateLimiter: limiter, logger: logger.Named("research")}
}

type researchErrorResponse struct {
	Error string `json:"error"`
}

// Handle (POST /research-lead) answers {success, research} or {error}.
func (h *ResearchHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil {
		key, _ := auth.UserFromContext(r.Context())
		if key == "" {
			key = getClientIP(r)
		}
		if !h.rateLimiter.Allow(key) {
			writeJSON(w, http.StatusTooManyRequests, researchErrorResponse{Error: "Too many requests. Please try again later."})
			return
		}
	}

	var input usecase.ResearchLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, researchErrorResponse{Error: "invalid JSON body"})
		return
	}

	output, err := h.Research.Execute(r.Context(), input)
	if err != nil {
		var techErr *usecase.TechnicalError
		switch {
		case usecase.IsValidationError(err):
			writeJSON(w, http.StatusBadRequest, researchErrorResponse{Error: err.Error()})
		case usecase.IsResearchError(err):
			h.logger.Warn("research failed", zap.Error(err))
			writeJSON(w, http.StatusBadGateway, researchErrorResponse{Error: err.Error()})
		case errors.As(err, &techErr):
			h.logger.Error("research unavailable", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, researchErrorResponse{Error: techErr.Message})
		default:
			h.logger.Error("unexpected research error", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, researchErrorResponse{Error: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, output)
}
