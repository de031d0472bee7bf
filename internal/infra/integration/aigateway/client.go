// Package aigateway researches companies through an OpenAI-compatible
// chat-completion endpoint and normalizes the reply into a ResearchResult.
package aigateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/infra/httputil"
	"github.com/xavierca1/lead-pipeline/internal/metrics"
)

const (
	DefaultURL   = "https://ai.gateway.lovable.dev/v1/chat/completions"
	DefaultModel = "google/gemini-2.5-flash"

	errMissingAPIKey = "API key not configured"
	maxErrorBody     = 512
)

const systemPrompt = `You are an AI research agent for a sales team. Research companies and provide actionable insights for outreach.`

const userPromptFormat = `Research %s and provide:
1. Company overview and industry
2. Potential pain points this company might have
3. Key decision makers (if public info)
4. Recent news or developments
5. Suggested outreach angle

Format as JSON with keys: overview, painPoints, decisionMakers, recentNews, outreachAngle`

type Client struct {
	url        string
	model      string
	apiKey     string
	maxRetries int
	http       *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		url:        cfg.URL,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		http:       &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("aigateway"),
	}
}

// Configured reports whether the client holds a credential.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Research asks the gateway about companyName. A reply that is not a JSON
// object is not an error: it comes back as the Overview with empty lists.
func (c *Client) Research(ctx context.Context, companyName string) (entity.ResearchResult, error) {
	if c.apiKey == "" {
		metrics.RecordResearchOutcome(metrics.ResearchOutcomeFailed)
		return entity.ResearchResult{}, &ResearchServiceError{Message: errMissingAPIKey}
	}

	content, err := c.complete(ctx, companyName)
	if err != nil {
		metrics.RecordResearchOutcome(metrics.ResearchOutcomeFailed)
		c.logger.Error("research call failed", zap.String("company", companyName), zap.Error(err))
		return entity.ResearchResult{}, err
	}

	result, parsed := ParseResearch(content)
	if parsed {
		metrics.RecordResearchOutcome(metrics.ResearchOutcomeParsed)
	} else {
		metrics.RecordResearchOutcome(metrics.ResearchOutcomeDegraded)
		c.logger.Warn("research reply is not JSON, storing raw text", zap.String("company", companyName))
	}

	c.logger.Info("research completed", zap.String("company", companyName), zap.Bool("structured", parsed))
	return result, nil
}

func (c *Client) complete(ctx context.Context, companyName string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptFormat, companyName)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &ResearchServiceError{Message: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &ResearchServiceError{Message: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		return "", &ResearchServiceError{Message: "request failed: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ResearchServiceError{StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ResearchServiceError{StatusCode: resp.StatusCode, Message: truncate(string(respBody), maxErrorBody)}
	}

	var completion chatResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", &ResearchServiceError{StatusCode: resp.StatusCode, Message: "malformed completion envelope", Err: err}
	}
	if len(completion.Choices) == 0 {
		return "", &ResearchServiceError{StatusCode: resp.StatusCode, Message: "completion has no choices"}
	}

	return completion.Choices[0].Message.Content, nil
}

// ParseResearch decodes content as a research JSON object. Fields are read
// one by one: a field of the wrong shape is coerced or left empty without
// discarding the others. When content is not a JSON object at all, the raw
// content becomes the Overview and parsed is false.
func ParseResearch(content string) (result entity.ResearchResult, parsed bool) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &fields); err == nil {
			result = entity.ResearchResult{
				Overview:       textField(fields["overview"]),
				PainPoints:     listField(fields["painPoints"]),
				DecisionMakers: listField(fields["decisionMakers"]),
				RecentNews:     textField(fields["recentNews"]),
				OutreachAngle:  textField(fields["outreachAngle"]),
			}
			result.Normalize()
			return result, true
		}
	}

	fallback := entity.ResearchResult{Overview: content}
	fallback.Normalize()
	return fallback, false
}

// textField accepts strings, numbers and booleans. Objects, arrays and null
// read as empty.
func textField(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	switch raw[0] {
	case '{', '[', 'n':
		return ""
	}
	return string(raw)
}

// listField accepts an array or a single string. Array items that are not
// strings are flattened to text; null items are dropped.
func listField(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []string{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := textField(raw); s != "" {
			return []string{s}
		}
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := itemText(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// itemText renders a list item. Objects such as {"name":"Jane","title":"CEO"}
// become their string values joined in document order: "Jane, CEO".
func itemText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] != '{' {
		if s := textField(raw); s != "" {
			return s
		}
		return compact(raw)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return compact(raw)
	}
	var parts []string
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return compact(raw)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return compact(raw)
		}
		if s := textField(value); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return compact(raw)
	}
	return strings.Join(parts, ", ")
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
