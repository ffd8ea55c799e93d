package autosave

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cv_autosave_writes_total",
		Help: "Autosave writes sent to the CV service, by result.",
	}, []string{"result"})

	writeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cv_autosave_write_duration_seconds",
		Help:    "Duration of autosave writes.",
		Buckets: prometheus.DefBuckets,
	})

	coalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cv_autosave_coalesced_total",
		Help: "Edits superseded by a later edit before being written.",
	})
)
