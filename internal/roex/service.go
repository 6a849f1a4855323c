// Package roex is the outbound client for the RoEx audio-processing API.
// It owns everything provider-specific: the closed set of service types,
// the endpoint layout, the per-service payload shapes and the task-id and
// result fields of provider responses.
package roex

import (
	"fmt"

	apperrors "audiogw/internal/pkg/errors"
)

// ServiceType selects which of the five provider operations a request
// targets. The set is closed: anything else is rejected at the edge and
// never reaches dispatch.
type ServiceType string

const (
	ServiceMasteringFull ServiceType = "mastering_full"
	ServiceMixingFull    ServiceType = "mixing_full"
	ServiceMixEnhance    ServiceType = "mix_enhance"
	ServiceMixAnalysis   ServiceType = "mix_analysis"
	ServiceCleanup       ServiceType = "cleanup"
)

// ParseServiceType validates a service type tag. Unknown tags produce a
// validation error carrying the offending value.
func ParseServiceType(s string) (ServiceType, error) {
	switch ServiceType(s) {
	case ServiceMasteringFull, ServiceMixingFull, ServiceMixEnhance, ServiceMixAnalysis, ServiceCleanup:
		return ServiceType(s), nil
	}
	return "", apperrors.Validationf("unsupported service type: %s", s).WithField("service_type", s)
}

// endpoints describes the provider route layout for one service type.
// Status paths mirror the create paths with the task id appended.
type endpoints struct {
	create      string
	taskIDField string
}

var serviceEndpoints = map[ServiceType]endpoints{
	ServiceMasteringFull: {create: "/v1/mastering/preview", taskIDField: "mastering_task_id"},
	ServiceMixingFull:    {create: "/v1/mix/preview", taskIDField: "multitrack_task_id"},
	ServiceMixEnhance:    {create: "/v1/enhance", taskIDField: "enhance_task_id"},
	ServiceMixAnalysis:   {create: "/v1/analysis", taskIDField: "analysis_task_id"},
	ServiceCleanup:       {create: "/v1/cleanup", taskIDField: "cleanup_task_id"},
}

func (s ServiceType) createPath() string {
	return serviceEndpoints[s].create
}

func (s ServiceType) statusPath(taskID string) string {
	return fmt.Sprintf("%s/%s", serviceEndpoints[s].create, taskID)
}

func (s ServiceType) taskIDField() string {
	return serviceEndpoints[s].taskIDField
}
