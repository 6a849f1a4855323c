package roex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "audiogw/internal/pkg/errors"
	"audiogw/internal/pkg/logger"
)

const signedUploadURLPath = "/v1/upload/signed-url"

// maxResponseBytes caps how much of a provider response is read. Provider
// bodies are small JSON documents; anything larger is malformed.
const maxResponseBytes = 4 << 20

// Config holds provider connection settings for the client.
type Config struct {
	// BaseURL is the provider base URL, without the /v1 path prefix.
	BaseURL string
	// APIKey is the bearer credential attached to every request.
	APIKey string
	// Timeout bounds each outbound call. Defaults to 60s.
	Timeout time.Duration
}

// Client talks to the provider API. One Client is shared across all
// inbound requests; it holds no per-job state.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	log     *logger.Logger
}

// NewClient creates a provider client. The underlying http.Client reuses
// connections across calls and enforces the configured timeout.
func NewClient(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

// CreateTask submits one task to the provider and returns the provider's
// task id. Exactly one outbound call is made: a failure is surfaced to the
// caller, never retried.
func (c *Client) CreateTask(ctx context.Context, svc ServiceType, req TaskRequest) (string, error) {
	payload, err := buildCreatePayload(svc, req)
	if err != nil {
		return "", err
	}

	status, raw, err := c.do(ctx, http.MethodPost, svc.createPath(), payload)
	if err != nil {
		return "", apperrors.WrapWithCode(err, apperrors.CodeUpstream, "roex.create", fmt.Sprintf("%s request failed", svc))
	}
	if status < 200 || status >= 300 {
		return "", upstreamStatusErr("roex.create", status, raw)
	}

	taskID, err := extractTaskID(svc, raw)
	if err != nil {
		return "", err
	}

	c.log.FromContext(ctx).Info("provider task created",
		"service_type", string(svc),
		"job_id", taskID,
	)
	return taskID, nil
}

// PollTask checks the provider for the state of one task. Provider
// responses always normalize: 200 completes with the raw body, 202 keeps
// processing, any other status fails with "HTTP <code>" as the detail.
// Only transport-level problems return an error.
func (c *Client) PollTask(ctx context.Context, svc ServiceType, taskID string) (TaskStatus, error) {
	status, raw, err := c.do(ctx, http.MethodGet, svc.statusPath(taskID), nil)
	if err != nil {
		return TaskStatus{}, apperrors.WrapWithCode(err, apperrors.CodeUpstream, "roex.poll", "status check failed")
	}

	switch status {
	case http.StatusOK:
		if !json.Valid(raw) {
			return TaskStatus{}, apperrors.Upstreamf("provider returned invalid JSON")
		}
		return TaskStatus{State: StateCompleted, Result: raw}, nil
	case http.StatusAccepted:
		return TaskStatus{State: StateProcessing}, nil
	default:
		return TaskStatus{State: StateFailed, Detail: fmt.Sprintf("HTTP %d", status)}, nil
	}
}

// SignedUploadURL forwards an upload-url request to the provider and
// returns the provider's JSON body untouched.
func (c *Client) SignedUploadURL(ctx context.Context, req UploadRequest) (json.RawMessage, error) {
	status, raw, err := c.do(ctx, http.MethodPost, signedUploadURLPath, req)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.CodeUpstream, "roex.upload", "signed url request failed")
	}
	if status < 200 || status >= 300 {
		return nil, upstreamStatusErr("roex.upload", status, raw)
	}
	if !json.Valid(raw) {
		return nil, apperrors.Upstreamf("provider returned invalid JSON")
	}
	return raw, nil
}

// do issues one outbound request and returns the response status and body.
// Every request carries the bearer credential.
func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return res.StatusCode, raw, nil
}

// extractTaskID pulls the per-service task id field out of a create
// response. A 2xx response without the field is still an upstream failure.
func extractTaskID(svc ServiceType, raw []byte) (string, error) {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", apperrors.Upstreamf("provider returned invalid JSON")
	}

	id, ok := body[svc.taskIDField()].(string)
	if !ok || id == "" {
		return "", apperrors.Upstreamf("provider response missing %s", svc.taskIDField())
	}
	return id, nil
}

func upstreamStatusErr(op string, status int, raw []byte) *apperrors.Error {
	msg := fmt.Sprintf("provider returned HTTP %d", status)
	if text := strings.TrimSpace(string(raw)); text != "" {
		msg += ": " + text
	}
	err := apperrors.New(apperrors.CodeUpstream, msg)
	err.Op = op
	return err
}
