package scan

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/odvcencio/guardian/pkg/object"
)

// Metrics counts scan outcomes. A nil *Metrics records nothing.
type Metrics struct {
	files    *prometheus.CounterVec
	failures *prometheus.CounterVec
	objects  prometheus.Counter
	duration prometheus.Histogram
}

// NewMetrics creates the scan collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_scanned_files_total",
				Help: "Counts of object files validated, by reader",
			},
			[]string{"kind"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_scan_failures_total",
				Help: "Counts of object files that failed validation, by reader and error kind",
			},
			[]string{"kind", "error"},
		),
		objects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guardian_validated_objects_total",
			Help: "Counts of objects that passed validation",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "guardian_scan_duration_seconds",
			Help:    "Wall time of a full repository scan",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.files, m.failures, m.objects, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(res Result) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(string(res.Kind)).Inc()
	m.objects.Add(float64(res.NumObjects))
	if res.Err != nil {
		m.failures.WithLabelValues(string(res.Kind), errorLabel(res.Err)).Inc()
	}
}

func (m *Metrics) observeScan(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(elapsed.Seconds())
}

func errorLabel(err error) string {
	var oe *object.Error
	if errors.As(err, &oe) {
		return oe.Kind.String()
	}
	return "io"
}
