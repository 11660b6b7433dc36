package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and
// labeling.
type Service struct {
	GeneratorRuns        prometheus.Counter
	ProposalsCreated     prometheus.Counter
	MatchesConfirmed     prometheus.Counter
	ReservationsUpserted prometheus.Counter
	ReservationsDeleted  prometheus.Counter
	NotifSent            prometheus.Counter
	NotifFailed          prometheus.Counter
	GenerationDuration   prometheus.Histogram
	ProcessingDuration   prometheus.Histogram
	StartupTimeSeconds   prometheus.Gauge
}
