package usecase

import (
	"errors"
	"strings"
)

const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "LEAD_NOT_FOUND"
	CodeDatabase    = "DATABASE_ERROR"
	CodeResearch    = "RESEARCH_FAILED"
	CodeMissingCred = "RESEARCH_NOT_CONFIGURED"
)

type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

func IsValidationError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == CodeValidation
}

func newValidationError(fields []ValidationError) *DomainError {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+" ("+f.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  fields,
	}
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var techErr *TechnicalError
	return errors.As(err, &techErr)
}
