package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"audiogw/internal/observability/metrics"
	"audiogw/internal/pkg/logger"
	"audiogw/internal/pkg/middleware"
	"audiogw/internal/roex"
	"audiogw/internal/testsupport/roexstub"
)

const testAPIKey = "test-api-key"

// One collector for the whole test binary; the default prometheus registry
// rejects duplicate registrations.
var testMetrics = metrics.NewCollector("audiogw_handlers")

func newTestHandler(t *testing.T, opts roexstub.Options) (*Handler, *roexstub.Provider) {
	t.Helper()

	if opts.APIKey == "" {
		opts.APIKey = testAPIKey
	}
	stub := roexstub.Start(opts)
	t.Cleanup(stub.Close)

	var buf bytes.Buffer
	log := logger.New(logger.Config{
		Level:  "debug",
		Format: "json",
		Output: &buf,
	})

	client := roex.NewClient(roex.Config{
		BaseURL: stub.BaseURL(),
		APIKey:  testAPIKey,
		Timeout: 5 * time.Second,
	}, log)

	return New(Deps{Roex: client, Log: log, Metrics: testMetrics}), stub
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return body
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t, roexstub.Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	http.HandlerFunc(h.Health).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", body["status"])
	}
	if body["service"] != "audiogw" {
		t.Errorf("expected service 'audiogw', got %v", body["service"])
	}
	ts, _ := body["timestamp"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("expected RFC3339 timestamp, got %q: %v", ts, err)
	}
}

func TestProcess(t *testing.T) {
	t.Run("submits mastering job", func(t *testing.T) {
		h, stub := newTestHandler(t, roexstub.Options{TaskID: "task-42"})
		handler := middleware.WrapHandler(h.log, h.Process)

		rec := postJSON(t, handler, "/process",
			`{"service_type":"mastering_full","file_url":"https://files.example.com/track.wav","musical_style":"rock"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body: %s)", rec.Code, rec.Body.String())
		}

		body := decodeBody(t, rec)
		if body["success"] != true {
			t.Errorf("expected success true, got %v", body["success"])
		}
		if body["job_id"] != "task-42" {
			t.Errorf("expected job_id 'task-42', got %v", body["job_id"])
		}
		if body["service_type"] != "mastering_full" {
			t.Errorf("expected service_type 'mastering_full', got %v", body["service_type"])
		}
		if body["status"] != "processing" {
			t.Errorf("expected status 'processing', got %v", body["status"])
		}

		ops := stub.Operations()
		if len(ops) != 1 {
			t.Fatalf("expected exactly 1 provider call, got %d", len(ops))
		}
		if ops[0].Path != "/v1/mastering/preview" {
			t.Errorf("expected provider path /v1/mastering/preview, got %s", ops[0].Path)
		}
		if ops[0].Body["musical_style"] != "ROCK" {
			t.Errorf("expected musical_style 'ROCK', got %v", ops[0].Body["musical_style"])
		}
	})

	t.Run("analysis maps file_url to track_url", func(t *testing.T) {
		h, stub := newTestHandler(t, roexstub.Options{TaskID: "abc123"})
		handler := middleware.WrapHandler(h.log, h.Process)

		rec := postJSON(t, handler, "/process",
			`{"service_type":"mix_analysis","file_url":"https://x/a.wav"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body: %s)", rec.Code, rec.Body.String())
		}

		body := decodeBody(t, rec)
		if body["job_id"] != "abc123" {
			t.Errorf("expected job_id 'abc123', got %v", body["job_id"])
		}

		ops := stub.Operations()
		if len(ops) != 1 {
			t.Fatalf("expected exactly 1 provider call, got %d", len(ops))
		}
		if ops[0].Path != "/v1/analysis" {
			t.Errorf("expected provider path /v1/analysis, got %s", ops[0].Path)
		}
		if ops[0].Body["track_url"] != "https://x/a.wav" {
			t.Errorf("expected track_url 'https://x/a.wav', got %v", ops[0].Body["track_url"])
		}
		if len(ops[0].Body) != 1 {
			t.Errorf("expected only track_url in payload, got %v", ops[0].Body)
		}
	})

	t.Run("accepts webhook_url and parameters", func(t *testing.T) {
		h, stub := newTestHandler(t, roexstub.Options{})
		handler := middleware.WrapHandler(h.log, h.Process)

		rec := postJSON(t, handler, "/process",
			`{"service_type":"mix_enhance","file_url":"https://files.example.com/mix.wav","webhook_url":"https://hooks.example.com/done","parameters":{"foo":1}}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body: %s)", rec.Code, rec.Body.String())
		}
		if len(stub.Operations()) != 1 {
			t.Fatalf("expected exactly 1 provider call, got %d", len(stub.Operations()))
		}
	})

	t.Run("rejects unknown service type", func(t *testing.T) {
		h, stub := newTestHandler(t, roexstub.Options{})
		handler := middleware.WrapHandler(h.log, h.Process)

		rec := postJSON(t, handler, "/process",
			`{"service_type":"remix","file_url":"https://files.example.com/track.wav"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		detail, _ := body["detail"].(string)
		if !strings.Contains(detail, "unsupported service type: remix") {
			t.Errorf("expected unsupported service type detail, got %q", detail)
		}

		if len(stub.Operations()) != 0 {
			t.Errorf("expected zero provider calls, got %d", len(stub.Operations()))
		}
	})

	t.Run("rejects missing file_url", func(t *testing.T) {
		h, stub := newTestHandler(t, roexstub.Options{})
		handler := middleware.WrapHandler(h.log, h.Process)

		rec := postJSON(t, handler, "/process", `{"service_type":"cleanup"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		if body["detail"] != "file_url is required" {
			t.Errorf("expected file_url detail, got %v", body["detail"])
		}

		if len(stub.Operations()) != 0 {
			t.Errorf("expected zero provider calls, got %d", len(stub.Operations()))
		}
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		h, _ := newTestHandler(t, roexstub.Options{})
		handler := middleware.WrapHandler(h.log, h.Process)

		rec := postJSON(t, handler, "/process", `{"service_type":`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		if body["detail"] != "invalid json body" {
			t.Errorf("expected invalid json detail, got %v", body["detail"])
		}
	})

	t.Run("provider error surfaces as 500", func(t *testing.T) {
		h, _ := newTestHandler(t, roexstub.Options{CreateStatus: 503})
		handler := middleware.WrapHandler(h.log, h.Process)

		rec := postJSON(t, handler, "/process",
			`{"service_type":"mastering_full","file_url":"https://files.example.com/track.wav"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		detail, _ := body["detail"].(string)
		if !strings.Contains(detail, "provider returned HTTP 503") {
			t.Errorf("expected provider error detail, got %q", detail)
		}
	})
}

func TestStatus(t *testing.T) {
	t.Run("still processing", func(t *testing.T) {
		h, stub := newTestHandler(t, roexstub.Options{StatusCode: 202})
		handler := http.HandlerFunc(h.Status)

		rec := postJSON(t, handler, "/status", `{"job_id":"job-9","service_type":"mastering_full"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		if body["success"] != true {
			t.Errorf("expected success true, got %v", body["success"])
		}
		if body["status"] != "processing" {
			t.Errorf("expected status 'processing', got %v", body["status"])
		}
		if body["job_id"] != "job-9" {
			t.Errorf("expected job_id 'job-9', got %v", body["job_id"])
		}

		ops := stub.Operations()
		if len(ops) != 1 || ops[0].Path != "/v1/mastering/preview/job-9" {
			t.Errorf("expected one poll of /v1/mastering/preview/job-9, got %v", ops)
		}
	})

	t.Run("completed mastering carries download url", func(t *testing.T) {
		h, _ := newTestHandler(t, roexstub.Options{
			StatusCode: 200,
			StatusBody: `{"download_url_mastered_preview":"https://cdn.example.com/master.wav","loudness":-14}`,
		})
		handler := http.HandlerFunc(h.Status)

		rec := postJSON(t, handler, "/status", `{"job_id":"job-9","service_type":"mastering_full"}`)

		body := decodeBody(t, rec)
		if body["success"] != true || body["status"] != "completed" {
			t.Fatalf("expected completed response, got %v", body)
		}
		if body["download_url"] != "https://cdn.example.com/master.wav" {
			t.Errorf("expected download_url extracted, got %v", body["download_url"])
		}
		result, ok := body["result"].(map[string]any)
		if !ok {
			t.Fatalf("expected result object, got %v", body["result"])
		}
		if result["loudness"] != float64(-14) {
			t.Errorf("expected provider body echoed in result, got %v", result)
		}
	})

	t.Run("completed analysis echoes analysis_data", func(t *testing.T) {
		h, _ := newTestHandler(t, roexstub.Options{
			StatusCode: 200,
			StatusBody: `{"peak":-0.3,"integrated_loudness":-13.7}`,
		})
		handler := http.HandlerFunc(h.Status)

		rec := postJSON(t, handler, "/status", `{"job_id":"job-9","service_type":"mix_analysis"}`)

		body := decodeBody(t, rec)
		if body["status"] != "completed" {
			t.Fatalf("expected completed, got %v", body)
		}
		data, ok := body["analysis_data"].(map[string]any)
		if !ok {
			t.Fatalf("expected analysis_data object, got %v", body["analysis_data"])
		}
		if data["peak"] != float64(-0.3) {
			t.Errorf("expected analysis_data to echo provider body, got %v", data)
		}
		if _, present := body["download_url"]; present {
			t.Errorf("expected no download_url for analysis, got %v", body["download_url"])
		}
	})

	t.Run("completed cleanup echoes cleanup_data", func(t *testing.T) {
		h, _ := newTestHandler(t, roexstub.Options{
			StatusCode: 200,
			StatusBody: `{"cleaned_file":"https://cdn.example.com/clean.wav"}`,
		})
		handler := http.HandlerFunc(h.Status)

		rec := postJSON(t, handler, "/status", `{"job_id":"job-9","service_type":"cleanup"}`)

		body := decodeBody(t, rec)
		if body["status"] != "completed" {
			t.Fatalf("expected completed, got %v", body)
		}
		if _, ok := body["cleanup_data"].(map[string]any); !ok {
			t.Errorf("expected cleanup_data object, got %v", body["cleanup_data"])
		}
	})

	t.Run("provider failure never raises", func(t *testing.T) {
		h, _ := newTestHandler(t, roexstub.Options{StatusCode: 503})
		handler := http.HandlerFunc(h.Status)

		rec := postJSON(t, handler, "/status", `{"job_id":"job-9","service_type":"mix_enhance"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		if body["success"] != false {
			t.Errorf("expected success false, got %v", body["success"])
		}
		if body["status"] != "failed" {
			t.Errorf("expected status 'failed', got %v", body["status"])
		}
		if body["error"] != "HTTP 503" {
			t.Errorf("expected error 'HTTP 503', got %v", body["error"])
		}
	})

	t.Run("unknown service type fails in the body", func(t *testing.T) {
		h, stub := newTestHandler(t, roexstub.Options{})
		handler := http.HandlerFunc(h.Status)

		rec := postJSON(t, handler, "/status", `{"job_id":"job-9","service_type":"remix"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		if body["success"] != false || body["status"] != "failed" {
			t.Fatalf("expected failed envelope, got %v", body)
		}
		errText, _ := body["error"].(string)
		if !strings.Contains(errText, "unsupported service type: remix") {
			t.Errorf("expected unsupported service type error, got %q", errText)
		}

		if len(stub.Operations()) != 0 {
			t.Errorf("expected zero provider calls, got %d", len(stub.Operations()))
		}
	})

	t.Run("missing job_id fails in the body", func(t *testing.T) {
		h, _ := newTestHandler(t, roexstub.Options{})
		handler := http.HandlerFunc(h.Status)

		rec := postJSON(t, handler, "/status", `{"service_type":"cleanup"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		if body["error"] != "job_id is required" {
			t.Errorf("expected job_id error, got %v", body["error"])
		}
	})

	t.Run("invalid json fails in the body", func(t *testing.T) {
		h, _ := newTestHandler(t, roexstub.Options{})
		handler := http.HandlerFunc(h.Status)

		rec := postJSON(t, handler, "/status", `{"job_id":`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		if body["success"] != false || body["error"] != "invalid json body" {
			t.Errorf("expected invalid json envelope, got %v", body)
		}
	})

	t.Run("transport failure fails in the body", func(t *testing.T) {
		h, stub := newTestHandler(t, roexstub.Options{})
		stub.Close()
		handler := http.HandlerFunc(h.Status)

		rec := postJSON(t, handler, "/status", `{"job_id":"job-9","service_type":"mastering_full"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		if body["success"] != false || body["status"] != "failed" {
			t.Fatalf("expected failed envelope, got %v", body)
		}
		errText, _ := body["error"].(string)
		if !strings.Contains(errText, "status check failed") {
			t.Errorf("expected transport error detail, got %q", errText)
		}
	})
}

func TestSignedUploadURL(t *testing.T) {
	t.Run("relays provider body verbatim", func(t *testing.T) {
		uploadBody := `{"upload_url":"https://up.example.com/u1","file_url":"https://storage.example.com/f.wav","success":true}`
		h, stub := newTestHandler(t, roexstub.Options{UploadBody: uploadBody})
		handler := middleware.WrapHandler(h.log, h.SignedUploadURL)

		rec := postJSON(t, handler, "/upload/signed-url",
			`{"file_name":"f.wav","content_type":"audio/wav"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body: %s)", rec.Code, rec.Body.String())
		}
		if rec.Body.String() != uploadBody {
			t.Errorf("expected provider body relayed verbatim, got %s", rec.Body.String())
		}

		ops := stub.Operations()
		if len(ops) != 1 || ops[0].Path != "/v1/upload/signed-url" {
			t.Fatalf("expected one signed-url call, got %v", ops)
		}
		if ops[0].Body["file_name"] != "f.wav" || ops[0].Body["content_type"] != "audio/wav" {
			t.Errorf("expected request forwarded, got %v", ops[0].Body)
		}
	})

	t.Run("rejects missing file_name", func(t *testing.T) {
		h, _ := newTestHandler(t, roexstub.Options{})
		handler := middleware.WrapHandler(h.log, h.SignedUploadURL)

		rec := postJSON(t, handler, "/upload/signed-url", `{"content_type":"audio/wav"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("provider failure surfaces as 500", func(t *testing.T) {
		h, _ := newTestHandler(t, roexstub.Options{UploadStatus: 500})
		handler := middleware.WrapHandler(h.log, h.SignedUploadURL)

		rec := postJSON(t, handler, "/upload/signed-url",
			`{"file_name":"f.wav","content_type":"audio/wav"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		detail, _ := body["detail"].(string)
		if !strings.Contains(detail, "provider returned HTTP 500") {
			t.Errorf("expected provider error detail, got %q", detail)
		}
	})
}
