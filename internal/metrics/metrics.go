// Package metrics exposes the bot's Prometheus counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is what the services report to.
type Recorder interface {
	IncNotesFinalized()
	AddTracksAttached(n int)
	ObserveUpdate(kind, status string, duration time.Duration)
}

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	notesFinalized prometheus.Counter
	tracksAttached prometheus.Counter
	updatesTotal   *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the collectors on reg. Pass prometheus.DefaultRegisterer
// to have them served by promhttp.Handler().
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		notesFinalized: factory.NewCounter(prometheus.CounterOpts{
			Name: "notes_finalized_total",
			Help: "Total number of notes sent to the spreadsheet",
		}),
		tracksAttached: factory.NewCounter(prometheus.CounterOpts{
			Name: "tracks_attached_total",
			Help: "Total number of music tracks attached to notes",
		}),
		updatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_updates_total",
				Help: "Total number of handled updates by kind and status",
			},
			[]string{"kind", "status"},
		),
		updateDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bot_update_duration_seconds",
				Help:    "Time spent handling one update",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}
}

func (p *PrometheusRecorder) IncNotesFinalized() {
	p.notesFinalized.Inc()
}

func (p *PrometheusRecorder) AddTracksAttached(n int) {
	if n > 0 {
		p.tracksAttached.Add(float64(n))
	}
}

// ObserveUpdate records one handled update. status is "ok", "error" or "panic".
func (p *PrometheusRecorder) ObserveUpdate(kind, status string, duration time.Duration) {
	p.updatesTotal.WithLabelValues(kind, status).Inc()
	p.updateDuration.WithLabelValues(kind).Observe(duration.Seconds())
}
