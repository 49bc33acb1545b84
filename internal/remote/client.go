package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
)

const DefaultBaseURL = "http://localhost:8080"

type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the remote research service. It never retries; a failed
// call is reported to the caller as is.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		logger:  logger.Named("remote"),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type followupRequest struct {
	Query string `json:"query"`
}

type followupResponse struct {
	Questions []string `json:"questions"`
}

// Followup asks the service for clarifying questions. An empty slice means no
// clarification is needed.
func (c *Client) Followup(ctx context.Context, query string) ([]string, error) {
	body, err := c.post(ctx, OpFollowup, "/followup", followupRequest{Query: query})
	if err != nil {
		return nil, err
	}
	var parsed followupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode followup response: %w", err)
	}
	questions := parsed.Questions
	if questions == nil {
		questions = []string{}
	}
	c.logger.Debug("followup questions received", zap.Int("count", len(questions)))
	return questions, nil
}

type researchRequest struct {
	Query           string                    `json:"query"`
	Mode            string                    `json:"mode"`
	Breadth         int                       `json:"breadth"`
	Depth           int                       `json:"depth"`
	FollowupAnswers []research.FollowupAnswer `json:"followup_answers"`
}

// Research submits the final request and returns the report text. When the
// response has no usable "result" string the whole body is returned as
// indented JSON.
func (c *Client) Research(ctx context.Context, req research.Request, answers []research.FollowupAnswer) (string, error) {
	if answers == nil {
		answers = []research.FollowupAnswer{}
	}
	payload := researchRequest{
		Query:           req.Query,
		Mode:            string(req.Mode),
		Breadth:         req.Breadth,
		Depth:           req.Depth,
		FollowupAnswers: answers,
	}
	body, err := c.post(ctx, OpResearch, "/research", payload)
	if err != nil {
		return "", err
	}
	result, err := extractResult(body)
	if err != nil {
		return "", fmt.Errorf("decode research response: %w", err)
	}
	c.logger.Debug("research result received", zap.Int("bytes", len(result)))
	return result, nil
}

func extractResult(body []byte) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		return "", err
	}
	if object, ok := parsed.(map[string]any); ok {
		if result, ok := object["result"].(string); ok && result != "" {
			return result, nil
		}
	}
	formatted, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", err
	}
	return string(formatted), nil
}

// Probe checks that the service answers HTTP at all. Any status counts as
// reachable; the service defines no health endpoint.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) post(ctx context.Context, op string, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("path", path), zap.Error(err))
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("request rejected", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, newStatusError(op, resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return body, nil
}
