// Package roexstub hosts a fake provider API for tests: all five create
// endpoints, their status endpoints and the signed-url endpoint behind a
// single httptest.Server, with recorded operations and configurable
// responses.
package roexstub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// taskIDFields maps create paths to the response field carrying the task id.
var taskIDFields = map[string]string{
	"/v1/mastering/preview": "mastering_task_id",
	"/v1/mix/preview":       "multitrack_task_id",
	"/v1/enhance":           "enhance_task_id",
	"/v1/analysis":          "analysis_task_id",
	"/v1/cleanup":           "cleanup_task_id",
}

// Options describes how the fake provider should behave.
type Options struct {
	// APIKey is the bearer token the stub enforces on every request.
	// If empty, the check is skipped.
	APIKey string

	// TaskID is returned from create endpoints. Defaults to "task-1".
	TaskID string

	// CreateStatus is the HTTP status for create endpoints. Defaults to 200.
	CreateStatus int

	// CreateBody overrides the create response body entirely.
	CreateBody string

	// StatusCode is the HTTP status for status polls. Defaults to 202.
	StatusCode int

	// StatusBody is the body returned from status polls.
	StatusBody string

	// UploadStatus is the HTTP status for the signed-url endpoint.
	// Defaults to 200.
	UploadStatus int

	// UploadBody is the signed-url response body. Defaults to a small
	// JSON document with an upload_url field.
	UploadBody string
}

// Operation is one recorded provider interaction.
type Operation struct {
	Method string
	Path   string
	Body   map[string]any
}

// Provider hosts a single httptest.Server serving all provider endpoints.
type Provider struct {
	server *httptest.Server
	opts   Options

	mu         sync.Mutex
	operations []Operation
}

// Start spins up a new provider stub using the provided options.
func Start(opts Options) *Provider {
	p := &Provider{opts: opts}
	p.server = httptest.NewServer(http.HandlerFunc(p.handle))
	return p
}

// Close shuts down the underlying HTTP server.
func (p *Provider) Close() {
	if p.server != nil {
		p.server.Close()
	}
}

// BaseURL returns the HTTP base URL for all provider endpoints.
func (p *Provider) BaseURL() string {
	return p.server.URL
}

// Operations returns a copy of all recorded operations in order.
func (p *Provider) Operations() []Operation {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Operation, len(p.operations))
	copy(out, p.operations)
	return out
}

func (p *Provider) handle(w http.ResponseWriter, r *http.Request) {
	if !p.expectBearer(w, r) {
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/upload/signed-url":
		p.handleSignedURL(w, r)
	case r.Method == http.MethodPost && taskIDFields[r.URL.Path] != "":
		p.handleCreate(w, r)
	case r.Method == http.MethodGet && p.statusField(r.URL.Path) != "":
		p.handleStatus(w, r)
	default:
		http.Error(w, "unexpected request", http.StatusNotFound)
	}
}

// statusField matches GET paths of the form <create path>/<task id>.
func (p *Provider) statusField(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return ""
	}
	return taskIDFields[path[:idx]]
}

func (p *Provider) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	p.record(Operation{Method: r.Method, Path: r.URL.Path, Body: body})

	status := p.opts.CreateStatus
	if status == 0 {
		status = http.StatusOK
	}

	if p.opts.CreateBody != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(p.opts.CreateBody))
		return
	}

	if status < 200 || status >= 300 {
		http.Error(w, "provider unavailable", status)
		return
	}

	taskID := p.opts.TaskID
	if taskID == "" {
		taskID = "task-1"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{taskIDFields[r.URL.Path]: taskID})
}

func (p *Provider) handleStatus(w http.ResponseWriter, r *http.Request) {
	p.record(Operation{Method: r.Method, Path: r.URL.Path})

	status := p.opts.StatusCode
	if status == 0 {
		status = http.StatusAccepted
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if p.opts.StatusBody != "" {
		_, _ = w.Write([]byte(p.opts.StatusBody))
	}
}

func (p *Provider) handleSignedURL(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	p.record(Operation{Method: r.Method, Path: r.URL.Path, Body: body})

	status := p.opts.UploadStatus
	if status == 0 {
		status = http.StatusOK
	}
	if status < 200 || status >= 300 {
		http.Error(w, "provider unavailable", status)
		return
	}

	uploadBody := p.opts.UploadBody
	if uploadBody == "" {
		uploadBody = `{"upload_url":"https://uploads.example.com/signed","success":true}`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(uploadBody))
}

func (p *Provider) record(op Operation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.operations = append(p.operations, op)
}

func (p *Provider) expectBearer(w http.ResponseWriter, r *http.Request) bool {
	expected := strings.TrimSpace(p.opts.APIKey)
	if expected == "" {
		return true
	}
	if got := r.Header.Get("Authorization"); got != fmt.Sprintf("Bearer %s", expected) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}
