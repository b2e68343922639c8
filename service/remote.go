package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fastmakeup/final-ver/config"
)

// HTTPStatusError reports a non-200 answer from the remote analysis
// service. The orchestrator branches on the code to decide whether a
// call is worth retrying.
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("remote returned HTTP %d", e.Code)
}

// RemoteClient talks to the remote analysis service.
type RemoteClient struct {
	config     *config.RemoteConfig
	httpClient *http.Client
}

// UploadResponse is the answer to a multipart file upload.
type UploadResponse struct {
	Success  bool     `json:"success"`
	Uploaded []string `json:"uploaded"`
}

// AnalyzeResponse is the answer to an analysis start request. Newer
// servers answer asynchronously with a task id; legacy servers answer
// with the full result inline.
type AnalyzeResponse struct {
	Success bool           `json:"success"`
	Async   bool           `json:"async"`
	TaskID  string         `json:"task_id"`
	Result  map[string]any `json:"result"`
}

// StatusResponse is one poll answer for a running analysis task.
type StatusResponse struct {
	Status string         `json:"status"` // pending, running, done, error
	Result map[string]any `json:"result"`
	Error  string         `json:"error"`
}

// ChatResponse is the answer to a document question.
type ChatResponse struct {
	Answer  string `json:"answer"`
	Sources []any  `json:"sources"`
}

func NewRemoteClient(cfg *config.RemoteConfig) *RemoteClient {
	return &RemoteClient{
		config:     cfg,
		httpClient: &http.Client{},
	}
}

// Upload sends the given files to the remote service as one multipart
// request under the "files" field.
func (c *RemoteClient) Upload(ctx context.Context, paths []string) (*UploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open file for upload: %w", err)
		}
		part, err := writer.CreateFormFile("files", filepath.Base(path))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			file.Close()
			return nil, fmt.Errorf("copy file into form: %w", err)
		}
		file.Close()
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout(c.config.UploadTimeoutSec))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result UploadResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StartAnalysis asks the remote service to analyze the previously
// uploaded file set.
func (c *RemoteClient) StartAnalysis(ctx context.Context) (*AnalyzeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout(c.config.RequestTimeoutSec))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/analyze", nil)
	if err != nil {
		return nil, fmt.Errorf("create analyze request: %w", err)
	}

	var result AnalyzeResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TaskStatus polls a running analysis task.
func (c *RemoteClient) TaskStatus(ctx context.Context, taskID string) (*StatusResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout(c.config.StatusTimeoutSec))
	defer cancel()

	url := fmt.Sprintf("%s/analyze/status/%s", c.config.BaseURL, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}

	var result StatusResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks the remote service's liveness probe.
func (c *RemoteClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout(c.config.StatusTimeoutSec))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{Code: resp.StatusCode}
	}
	return nil
}

const (
	chatRetries      = 2
	chatRetryBackoff = 3 * time.Second
)

// Chat relays a question about the uploaded documents. The health
// probe runs first so an offline server fails fast instead of eating
// the full chat timeout; server-side errors get a couple of retries
// because the first question after an idle period tends to hit model
// load time.
func (c *RemoteClient) Chat(ctx context.Context, question string) (*ChatResponse, error) {
	if err := c.Health(ctx); err != nil {
		slog.Warn("remote health check failed before chat", "error", err)
	}

	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= chatRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(chatRetryBackoff)
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout(c.config.ChatTimeoutSec))
		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.config.BaseURL+"/chat", bytes.NewReader(payload))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("create chat request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		var result ChatResponse
		err = c.do(req, &result)
		cancel()
		if err == nil {
			result.Answer = unwrapAnswer(result.Answer, &result.Sources)
			return &result, nil
		}

		lastErr = err
		var httpErr *HTTPStatusError
		if errors.As(err, &httpErr) && httpErr.Code < 500 {
			return nil, err
		}
		slog.Warn("chat request failed, retrying", "attempt", attempt+1, "error", err)
	}

	return nil, fmt.Errorf("chat failed after %d attempts: %w", chatRetries+1, lastErr)
}

// unwrapAnswer handles servers that wrap the answer text in a JSON
// object; the text is pulled from the usual keys.
func unwrapAnswer(answer string, sources *[]any) string {
	trimmed := strings.TrimSpace(answer)
	if !strings.HasPrefix(trimmed, "{") {
		return answer
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return answer
	}

	for _, key := range []string{"answer", "text", "content", "summary", "response"} {
		if text, ok := parsed[key].(string); ok && text != "" {
			if len(*sources) == 0 {
				if extra, ok := parsed["sources"].([]any); ok {
					*sources = extra
				}
			}
			return text
		}
	}
	return answer
}

func (c *RemoteClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w, body: %s", err, string(body))
	}
	return nil
}

func (c *RemoteClient) timeout(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
