package roex

import "encoding/json"

// TaskState is the normalized view of a provider job. The provider owns
// the underlying state machine; the gateway only reads and relabels it.
type TaskState string

const (
	StateProcessing TaskState = "processing"
	StateCompleted  TaskState = "completed"
	StateFailed     TaskState = "failed"
)

// TaskStatus is the outcome of one status poll.
type TaskStatus struct {
	// State is the normalized job state.
	State TaskState
	// Result holds the raw provider body when State is StateCompleted.
	Result json.RawMessage
	// Detail holds the failure detail when State is StateFailed.
	Detail string
}

// downloadURLFields maps preview-producing services to the provider
// response field carrying the rendered audio URL. Analysis and cleanup
// return structured data rather than a single file.
var downloadURLFields = map[ServiceType]string{
	ServiceMasteringFull: "download_url_mastered_preview",
	ServiceMixingFull:    "preview_mix_url",
	ServiceMixEnhance:    "download_url_enhanced_mix",
}

// DownloadURL extracts the rendered-audio URL from a completed result.
// The second return is false when the service type has no download URL or
// the provider body does not carry the expected field.
func DownloadURL(svc ServiceType, result json.RawMessage) (string, bool) {
	field, ok := downloadURLFields[svc]
	if !ok {
		return "", false
	}

	var body map[string]any
	if err := json.Unmarshal(result, &body); err != nil {
		return "", false
	}

	url, ok := body[field].(string)
	if !ok || url == "" {
		return "", false
	}
	return url, true
}
