package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/auth"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
)

type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeUseCaseError maps use case errors to status codes. Anything it does
// not recognize is logged and reported as a 500 without details.
func writeUseCaseError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		domainErr *usecase.DomainError
		techErr   *usecase.TechnicalError
	)

	switch {
	case auth.IsAuthError(err):
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
	case errors.Is(err, entity.ErrLeadNotFound):
		writeErrorResponse(w, http.StatusNotFound, usecase.CodeNotFound, err.Error())
	case errors.As(err, &domainErr) && domainErr.Code == usecase.CodeValidation:
		resp := ErrorResponse{Error: domainErr.Code, Message: domainErr.Message}
		for _, f := range domainErr.Fields {
			resp.Fields = append(resp.Fields, FieldError{Field: f.Field, Message: f.Message})
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.As(err, &domainErr) && domainErr.Code == usecase.CodeResearch:
		writeErrorResponse(w, http.StatusBadGateway, domainErr.Code, domainErr.Message)
	case errors.As(err, &domainErr):
		writeErrorResponse(w, http.StatusUnprocessableEntity, domainErr.Code, domainErr.Message)
	case errors.As(err, &techErr):
		logger.Error("request failed", zap.String("code", techErr.Code), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, techErr.Code, techErr.Message)
	default:
		logger.Error("unexpected error", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}
