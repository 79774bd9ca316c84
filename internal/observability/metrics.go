package observability

import "github.com/prometheus/client_golang/prometheus"

// Operation labels for rejection metrics.
const (
	OperationSignUp = "signup"
	OperationCancel = "cancel"
)

var (
	signUpCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "registry",
		Name:      "signups_total",
		Help:      "Number of successful sign-ups, labeled by activity.",
	}, []string{"activity"})

	cancellationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "registry",
		Name:      "cancellations_total",
		Help:      "Number of successful sign-up cancellations, labeled by activity.",
	}, []string{"activity"})

	rejectionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "registry",
		Name:      "rejections_total",
		Help:      "Number of rejected sign-up and cancel requests, labeled by operation and reason.",
	}, []string{"operation", "reason"})

	participantsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "signup_service",
		Subsystem: "registry",
		Name:      "participants",
		Help:      "Current number of participants enrolled per activity.",
	}, []string{"activity"})
)

func init() {
	prometheus.MustRegister(signUpCounter, cancellationCounter, rejectionCounter, participantsGauge)
}

// RecordSignUp counts a sign-up and updates the enrollment gauge.
func RecordSignUp(activity string, participants int) {
	signUpCounter.WithLabelValues(activity).Inc()
	participantsGauge.WithLabelValues(activity).Set(float64(participants))
}

// RecordCancellation counts a cancellation and updates the enrollment gauge.
func RecordCancellation(activity string, participants int) {
	cancellationCounter.WithLabelValues(activity).Inc()
	participantsGauge.WithLabelValues(activity).Set(float64(participants))
}

// RecordRejection counts a rejected mutation.
func RecordRejection(operation, reason string) {
	rejectionCounter.WithLabelValues(operation, reason).Inc()
}

// RecordParticipants sets the enrollment gauge without counting a mutation.
func RecordParticipants(activity string, participants int) {
	participantsGauge.WithLabelValues(activity).Set(float64(participants))
}
