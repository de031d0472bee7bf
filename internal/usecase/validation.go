package usecase

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

const (
	maxCompanyNameLen = 200
	maxNotesLen       = 5000
)

var phoneDigits = regexp.MustCompile(`\D`)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	name := strings.TrimSpace(input.CompanyName)
	if name == "" {
		errors = append(errors, ValidationError{"company_name", "is required"})
	} else if len(name) > maxCompanyNameLen {
		errors = append(errors, ValidationError{"company_name", "must not exceed 200 characters"})
	}

	if email := strings.TrimSpace(input.ContactEmail); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errors = append(errors, ValidationError{"contact_email", "is invalid"})
		}
	}

	if phone := strings.TrimSpace(input.ContactPhone); phone != "" && !isValidPhoneNumber(phone) {
		errors = append(errors, ValidationError{"contact_phone", "must be a valid phone number"})
	}

	if website := strings.TrimSpace(input.Website); website != "" {
		if _, ok := normalizeWebsite(website); !ok {
			errors = append(errors, ValidationError{"website", "must be a valid URL"})
		}
	}

	if len(input.Notes) > maxNotesLen {
		errors = append(errors, ValidationError{"notes", "must not exceed 5000 characters"})
	}

	return errors
}

func ValidateUpdateLeadInput(input UpdateLeadInput) []ValidationError {
	var errors []ValidationError

	if input.Status == nil && input.Score == nil {
		errors = append(errors, ValidationError{"body", "at least one of status or score is required"})
	}
	if input.Status != nil && strings.TrimSpace(*input.Status) == "" {
		errors = append(errors, ValidationError{"status", "must not be empty"})
	}
	if input.Score != nil && *input.Score < 0 {
		errors = append(errors, ValidationError{"score", "must not be negative"})
	}

	return errors
}

func isValidPhoneNumber(phone string) bool {
	cleaned := phoneDigits.ReplaceAllString(phone, "")

	return len(cleaned) >= 7 && len(cleaned) <= 15
}

// normalizeWebsite accepts "acme.com" as well as full URLs and returns
// the https form of scheme-less input.
func normalizeWebsite(raw string) (string, bool) {
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" || !strings.Contains(u.Hostname(), ".") || strings.ContainsAny(u.Host, " ") {
		return "", false
	}
	return u.String(), true
}

func statusFromInput(s string) entity.Status {
	return entity.Status(strings.TrimSpace(s))
}
