package handlers

import (
	"net/http"
	"strings"
	"time"

	"audiogw/internal/httpkit"
	"audiogw/internal/pkg/errors"
	"audiogw/internal/roex"
)

// ProcessRequest is the normalized inbound shape shared by all five audio
// services. webhook_url and parameters are accepted for callers that send
// them but have no effect: the provider is polled, never called back.
type ProcessRequest struct {
	ServiceType  string         `json:"service_type"`
	FileURL      string         `json:"file_url"`
	MusicalStyle string         `json:"musical_style,omitempty"`
	WebhookURL   string         `json:"webhook_url,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
}

type ProcessResponse struct {
	Success     bool   `json:"success"`
	JobID       string `json:"job_id"`
	ServiceType string `json:"service_type"`
	Status      string `json:"status"`
}

// Process dispatches a request to the matching provider endpoint and
// returns the provider's task id. Exactly one outbound call is made; the
// caller keeps the returned job_id and polls Status with it.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var req ProcessRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		return errors.Validation("invalid json body")
	}

	svc, err := roex.ParseServiceType(req.ServiceType)
	if err != nil {
		return err
	}
	if strings.TrimSpace(req.FileURL) == "" {
		return errors.Validation("file_url is required").WithField("field", "file_url")
	}

	h.log.FromContext(ctx).Info("processing audio",
		"service_type", string(svc),
	)

	start := time.Now()
	jobID, err := h.roex.CreateTask(ctx, svc, roex.TaskRequest{
		FileURL:      req.FileURL,
		MusicalStyle: req.MusicalStyle,
	})
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	h.metrics.RecordProviderCall("create", string(svc), outcome, time.Since(start))
	if err != nil {
		return err
	}

	httpkit.WriteJSON(w, http.StatusOK, ProcessResponse{
		Success:     true,
		JobID:       jobID,
		ServiceType: string(svc),
		Status:      string(roex.StateProcessing),
	})
	return nil
}
