// Package gemini implements llm.ChatClient on the Gemini generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"mindwell-backend/internal/llm"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	maxErrorBody   = 4096
)

// Client implements llm.ChatClient using Gemini generateContent.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient constructs a Gemini client.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		model:      strings.TrimSpace(model),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

// Chat sends the history plus prompt and returns the model's text.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	body := generateRequest{Contents: make([]content, 0, len(req.History)+1)}
	if s := strings.TrimSpace(req.System); s != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: s}}}
	}
	for _, t := range req.History {
		role := llm.RoleUser
		if t.Role == llm.RoleModel {
			role = llm.RoleModel
		}
		body.Contents = append(body.Contents, content{Role: role, Parts: []part{{Text: t.Text}}})
	}
	body.Contents = append(body.Contents, content{Role: llm.RoleUser, Parts: []part{{Text: req.Prompt}}})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("gemini request timeout: %w", err)
		}
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("gemini read body: %w", err)
	}

	var parsed generateResponse
	decodeErr := json.Unmarshal(raw, &parsed)
	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		return "", classify(resp.StatusCode, parsed.Error, raw)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("gemini response parse: %w", decodeErr)
	}

	var sb strings.Builder
	for _, cand := range parsed.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func classify(status int, apiErr *apiError, raw []byte) error {
	msg := ""
	if apiErr != nil {
		msg = apiErr.Message
		if status == http.StatusOK && apiErr.Code != 0 {
			status = apiErr.Code
		}
	}
	if msg == "" {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		msg = strings.TrimSpace(string(raw))
	}
	lower := strings.ToLower(msg)
	switch {
	case status == http.StatusTooManyRequests,
		apiErr != nil && apiErr.Status == "RESOURCE_EXHAUSTED",
		strings.Contains(lower, "quota"):
		return fmt.Errorf("%w: status %d: %s", llm.ErrRateLimited, status, msg)
	case strings.Contains(msg, "API key not valid"):
		return fmt.Errorf("%w: %s", llm.ErrInvalidAPIKey, msg)
	default:
		return fmt.Errorf("gemini http status %d: %s", status, msg)
	}
}

var _ llm.ChatClient = (*Client)(nil)
