package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
)

var (
	metricParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounces_parsed_total",
			Help: "Bounces parsed into at least one delivery record, by adapter.",
		},
		[]string{"adapter"},
	)
	metricUnrecognized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bounces_unrecognized_total",
			Help: "Messages no adapter could parse.",
		},
	)
	metricRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounces_records_total",
			Help: "Delivery records produced. Kind is temporary or permanent.",
		},
		[]string{"reason", "kind"},
	)
	metricParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bounces_parse_duration_seconds",
			Help:    "Time spent preparing and parsing one message.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)
	metricSuppressions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounces_suppressions_total",
			Help: "Suppression list updates. Result values: ok, error.",
		},
		[]string{"result"},
	)
	metricIngest = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounces_ingest_total",
			Help: "Queued bounce processing outcomes. Result values: parsed, unrecognized, failed.",
		},
		[]string{"result"},
	)
)

// ObserveParse records the outcome of one parse. res is nil when nothing matched.
func ObserveParse(res *engine.Result, took time.Duration) {
	metricParseDuration.Observe(took.Seconds())
	if res == nil {
		metricUnrecognized.Inc()
		return
	}
	metricParsed.WithLabelValues(res.Adapter).Inc()
	for _, rec := range res.Records {
		kind := "permanent"
		if rec.Temporary() {
			kind = "temporary"
		}
		metricRecords.WithLabelValues(string(rec.Reason), kind).Inc()
	}
}

func ObserveSuppression(err error) {
	if err != nil {
		metricSuppressions.WithLabelValues("error").Inc()
		return
	}
	metricSuppressions.WithLabelValues("ok").Inc()
}

// ObserveIngest counts a processed queue message by result.
func ObserveIngest(result string) {
	metricIngest.WithLabelValues(result).Inc()
}
