package aigateway

import (
	"fmt"
	"time"
)

type Config struct {
	URL        string
	Model      string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int // retries on HTTP 429 only; 0 disables
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ResearchServiceError covers every failure to obtain a reply from the
// gateway: missing credentials, transport errors and non-2xx answers.
type ResearchServiceError struct {
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Err        error
}

func (e *ResearchServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("AI gateway error: %d - %s", e.StatusCode, e.Message)
	}
	return "AI gateway error: " + e.Message
}

func (e *ResearchServiceError) Unwrap() error {
	return e.Err
}

// MissingCredentials reports whether the error comes from configuration
// rather than from the remote service.
func (e *ResearchServiceError) MissingCredentials() bool {
	return e.StatusCode == 0 && e.Message == errMissingAPIKey
}
