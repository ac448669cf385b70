package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed by the service.
var Registry = prometheus.NewRegistry()

var (
	AssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindwell_assessments_total",
			Help: "Completed stress assessments by predicted level",
		},
		[]string{"level"},
	)

	AssessmentFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindwell_assessment_failures_total",
			Help: "Assessments that could not be scored",
		},
		[]string{"reason"},
	)

	AssessmentDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mindwell_assessment_duration_seconds",
			Help:    "Time spent scoring a single assessment",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindwell_chat_requests_total",
			Help: "Advisor chat requests by outcome",
		},
		[]string{"outcome"},
	)

	ChatRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mindwell_chat_retries_total",
			Help: "Chat upstream retries after rate limiting",
		},
	)

	ReportsGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mindwell_reports_generated_total",
			Help: "PDF reports generated",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		AssessmentsTotal,
		AssessmentFailuresTotal,
		AssessmentDuration,
		ChatRequestsTotal,
		ChatRetriesTotal,
		ReportsGeneratedTotal,
	)
}

// ObserveAssessment records a completed assessment.
func ObserveAssessment(level string, elapsed time.Duration) {
	AssessmentsTotal.WithLabelValues(level).Inc()
	AssessmentDuration.Observe(elapsed.Seconds())
}

// IncAssessmentFailure counts an assessment that failed for the given reason.
func IncAssessmentFailure(reason string) {
	AssessmentFailuresTotal.WithLabelValues(reason).Inc()
}

// IncChat counts a chat request outcome (ok, rate_limited, invalid_key, error, breaker_open, disabled).
func IncChat(outcome string) {
	ChatRequestsTotal.WithLabelValues(outcome).Inc()
}

// IncChatRetry counts a retry against the chat upstream.
func IncChatRetry() {
	ChatRetriesTotal.Inc()
}

// IncReportGenerated counts a generated report.
func IncReportGenerated() {
	ReportsGeneratedTotal.Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
