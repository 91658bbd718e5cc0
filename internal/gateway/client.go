// Package gateway is the client for the remote assessment engine. All
// calls are stateless request/response keyed by session id; scoring, the
// question bank, and roadmap generation live server-side.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is the backend boundary consumed by the orchestrator.
type Client interface {
	CreateSession(ctx context.Context) (string, error)
	SubmitPersonalInfo(ctx context.Context, info PersonalInfo) error
	SubmitAnswer(ctx context.Context, sessionID, answer string) (AnswerResponse, error)
	SubmitFeedback(ctx context.Context, sessionID, feedback string) (FeedbackResponse, error)
	Chat(ctx context.Context, sessionID, message string) (ChatResponse, error)
	RequestRoadmap(ctx context.Context, sessionID string) (RoadmapResponse, error)
	RequestDetailedRoadmap(ctx context.Context, domain string) (DetailedRoadmap, error)
	DownloadRoadmapArtifact(ctx context.Context, domain string) ([]byte, error)
}

// HTTPClient talks JSON over HTTP to the counsellor backend.
type HTTPClient struct {
	base string
	hc   *http.Client
	log  *zap.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, log *zap.Logger) *HTTPClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPClient{
		base: baseURL,
		hc:   &http.Client{Timeout: timeout},
		log:  log.Named("gateway"),
	}
}

func (c *HTTPClient) CreateSession(ctx context.Context) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.post(ctx, "/start", nil, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("start: server returned no session id")
	}
	return out.SessionID, nil
}

func (c *HTTPClient) SubmitPersonalInfo(ctx context.Context, info PersonalInfo) error {
	return c.post(ctx, "/personal-info", info, nil)
}

func (c *HTTPClient) SubmitAnswer(ctx context.Context, sessionID, answer string) (AnswerResponse, error) {
	req := map[string]string{"session_id": sessionID, "answer": answer}
	var out AnswerResponse
	err := c.post(ctx, "/answer", req, &out)
	return out, err
}

func (c *HTTPClient) SubmitFeedback(ctx context.Context, sessionID, feedback string) (FeedbackResponse, error) {
	req := map[string]string{"session_id": sessionID, "feedback": feedback}
	var out FeedbackResponse
	err := c.post(ctx, "/feedback", req, &out)
	return out, err
}

func (c *HTTPClient) Chat(ctx context.Context, sessionID, message string) (ChatResponse, error) {
	req := map[string]string{"session_id": sessionID, "message": message}
	var out ChatResponse
	err := c.post(ctx, "/chat", req, &out)
	return out, err
}

func (c *HTTPClient) RequestRoadmap(ctx context.Context, sessionID string) (RoadmapResponse, error) {
	req := map[string]string{"session_id": sessionID}
	var out RoadmapResponse
	err := c.post(ctx, "/roadmap", req, &out)
	return out, err
}

func (c *HTTPClient) RequestDetailedRoadmap(ctx context.Context, domain string) (DetailedRoadmap, error) {
	req := map[string]string{"domain": domain}
	var out DetailedRoadmap
	err := c.post(ctx, "/detailed-roadmap", req, &out)
	return out, err
}

func (c *HTTPClient) DownloadRoadmapArtifact(ctx context.Context, domain string) ([]byte, error) {
	req := map[string]string{"domain": domain}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode download request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/download-roadmap", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("download roadmap: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download roadmap: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// post sends a JSON request and decodes the JSON response into out when
// out is non-nil. No retries: every failure is terminal for the turn.
func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("path", path), zap.String("req", reqID), zap.Error(err))
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request complete",
		zap.String("path", path),
		zap.String("req", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %s", path, resp.Status)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
