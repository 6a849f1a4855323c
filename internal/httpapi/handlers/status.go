package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"audiogw/internal/httpkit"
	"audiogw/internal/pkg/errors"
	"audiogw/internal/roex"
)

// StatusRequest identifies a provider job to poll. The caller is the sole
// keeper of the (job_id, service_type) pair; the gateway stores nothing
// between calls.
type StatusRequest struct {
	JobID       string `json:"job_id"`
	ServiceType string `json:"service_type"`
}

// StatusResponse is the normalized polling envelope. On completion the raw
// provider body is echoed under result, with a service-specific convenience
// field alongside it: download_url for the rendering services, analysis_data
// or cleanup_data for the reporting ones.
type StatusResponse struct {
	Success      bool            `json:"success"`
	Status       string          `json:"status"`
	JobID        string          `json:"job_id,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	DownloadURL  string          `json:"download_url,omitempty"`
	AnalysisData json.RawMessage `json:"analysis_data,omitempty"`
	CleanupData  json.RawMessage `json:"cleanup_data,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// Status polls the provider for one job. It never fails the HTTP exchange:
// every outcome, including bad input and provider errors, is reported as a
// 200 with success and status flags in the body.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteJSON(w, http.StatusOK, StatusResponse{
			Success: false,
			Status:  string(roex.StateFailed),
			Error:   "invalid json body",
		})
		return
	}

	httpkit.WriteJSON(w, http.StatusOK, h.pollStatus(r.Context(), req))
}

func (h *Handler) pollStatus(ctx context.Context, req StatusRequest) StatusResponse {
	failed := func(detail string) StatusResponse {
		return StatusResponse{
			Success: false,
			Status:  string(roex.StateFailed),
			JobID:   req.JobID,
			Error:   detail,
		}
	}

	svc, err := roex.ParseServiceType(req.ServiceType)
	if err != nil {
		return failed(errors.GetDetail(err))
	}
	if strings.TrimSpace(req.JobID) == "" {
		return failed("job_id is required")
	}

	log := h.log.FromContext(ctx)
	log.Info("checking job status",
		"service_type", string(svc),
		"job_id", req.JobID,
	)

	start := time.Now()
	status, err := h.roex.PollTask(ctx, svc, req.JobID)
	if err != nil {
		h.metrics.RecordProviderCall("poll", string(svc), "error", time.Since(start))
		log.WithError(err).Error("status check failed", "job_id", req.JobID)
		return failed(errors.GetDetail(err))
	}
	h.metrics.RecordProviderCall("poll", string(svc), string(status.State), time.Since(start))

	switch status.State {
	case roex.StateCompleted:
		resp := StatusResponse{
			Success: true,
			Status:  string(roex.StateCompleted),
			JobID:   req.JobID,
			Result:  status.Result,
		}
		switch svc {
		case roex.ServiceMixAnalysis:
			resp.AnalysisData = status.Result
		case roex.ServiceCleanup:
			resp.CleanupData = status.Result
		default:
			if url, ok := roex.DownloadURL(svc, status.Result); ok {
				resp.DownloadURL = url
			}
		}
		return resp

	case roex.StateFailed:
		return failed(status.Detail)

	default:
		return StatusResponse{
			Success: true,
			Status:  string(roex.StateProcessing),
			JobID:   req.JobID,
		}
	}
}
