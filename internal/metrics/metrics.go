package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"portfolioapi/internal/model"
)

// Recorder collects portfolio operation metrics.
type Recorder struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	files      *prometheus.GaugeVec
}

// NewRecorder creates the portfolio metrics and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_operations_total",
				Help: "Total number of portfolio operations by outcome.",
			},
			[]string{"operation", "category", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_operation_duration_seconds",
				Help:    "Duration of portfolio operations in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "category"},
		),
		files: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "portfolio_files",
				Help: "Number of files currently stored per category.",
			},
			[]string{"category"},
		),
	}

	for _, c := range []prometheus.Collector{r.operations, r.duration, r.files} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveOperation records one finished operation. category may be empty for operations spanning every category.
func (r *Recorder) ObserveOperation(op, category string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if category == "" {
		category = "all"
	}
	r.operations.WithLabelValues(op, category, outcome).Inc()
	r.duration.WithLabelValues(op, category).Observe(elapsed.Seconds())
}

// SetFiles publishes the per-category file counts of rec.
func (r *Recorder) SetFiles(rec *model.PortfolioRecord) {
	s := rec.Stats()
	r.files.WithLabelValues(model.Profile.String()).Set(boolToFloat(s.HasProfile))
	r.files.WithLabelValues(model.Resume.String()).Set(boolToFloat(s.HasResume))
	r.files.WithLabelValues(model.Project.String()).Set(float64(s.ProjectCount))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
