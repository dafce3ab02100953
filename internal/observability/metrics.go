package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for UpstreamRequests.
const (
	OutcomeOK            = "ok"
	OutcomeError         = "error"
	OutcomeNotConfigured = "not_configured"
)

var (
	// UpstreamRequests counts outbound model and notification calls.
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salesbot",
			Name:      "upstream_requests_total",
			Help:      "Outbound calls to model and notification gateways.",
		},
		[]string{"service", "outcome"},
	)

	// UpstreamLatency records upstream call duration in seconds.
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salesbot",
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of outbound gateway calls in seconds.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"service"},
	)

	// PromptSynthesis counts synthesized prompts by origin kind.
	PromptSynthesis = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salesbot",
			Name:      "prompt_synthesis_total",
			Help:      "Bot prompts synthesized, by origin kind.",
		},
		[]string{"kind"},
	)

	// QuotaRejections counts operations refused at the session ceiling.
	QuotaRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salesbot",
			Name:      "quota_rejections_total",
			Help:      "Operations rejected because the user reached the session ceiling.",
		},
	)

	// TemplateReplies counts template engine replies by the rule that fired.
	TemplateReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salesbot",
			Name:      "template_replies_total",
			Help:      "Template engine replies, by matched rule.",
		},
		[]string{"rule"},
	)
)

func init() {
	prometheus.MustRegister(UpstreamRequests, UpstreamLatency, PromptSynthesis, QuotaRejections, TemplateReplies)
}
