package handlers

import (
	"net/http"
	"strings"
	"time"

	"audiogw/internal/httpkit"
	"audiogw/internal/pkg/errors"
	"audiogw/internal/roex"
)

// SignedUploadURL forwards a signed-url request to the provider and relays
// the provider's JSON body byte for byte.
func (h *Handler) SignedUploadURL(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var req roex.UploadRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		return errors.Validation("invalid json body")
	}
	if strings.TrimSpace(req.FileName) == "" {
		return errors.Validation("file_name is required").WithField("field", "file_name")
	}
	if strings.TrimSpace(req.ContentType) == "" {
		return errors.Validation("content_type is required").WithField("field", "content_type")
	}

	start := time.Now()
	body, err := h.roex.SignedUploadURL(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	h.metrics.RecordProviderCall("signed_url", "", outcome, time.Since(start))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	return nil
}
