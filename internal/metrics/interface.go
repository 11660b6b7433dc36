package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation
// (e.g., Prometheus).
type Metrics interface {
	IncGeneratorRuns()
	AddProposalsCreated(count int)
	IncMatchesConfirmed()
	IncReservationsUpserted()
	IncReservationsDeleted()
	IncNotifSent()
	IncNotifFailed()
	ObserveGenerationDuration(seconds float64)
	ObserveProcessingDuration(ms float64)
	SetStartupTime(seconds float64)
}
