package handlers

import (
	"audiogw/internal/observability/metrics"
	"audiogw/internal/pkg/logger"
	"audiogw/internal/roex"
)

type Deps struct {
	Roex    *roex.Client
	Log     *logger.Logger
	Metrics *metrics.Collector
}

type Handler struct {
	roex    *roex.Client
	log     *logger.Logger
	metrics *metrics.Collector
}

func New(d Deps) *Handler {
	return &Handler{
		roex:    d.Roex,
		log:     d.Log,
		metrics: d.Metrics,
	}
}
