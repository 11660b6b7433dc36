package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		GeneratorRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtline_generator_runs_total",
			Help: "The total number of match generation runs.",
		}),
		ProposalsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtline_proposals_created_total",
			Help: "The total number of match proposals produced by the generator.",
		}),
		MatchesConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtline_matches_confirmed_total",
			Help: "The total number of proposals confirmed into scheduled matches.",
		}),
		ReservationsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtline_reservations_upserted_total",
			Help: "The total number of reservation upserts applied.",
		}),
		ReservationsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtline_reservations_deleted_total",
			Help: "The total number of reservation range deletions applied.",
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtline_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtline_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtline_generation_duration_seconds",
			Help:    "The duration of individual match generation runs.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtline_match_processing_duration_ms",
			Help:    "The duration of processing a single scheduled match in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtline_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.GeneratorRuns,
		s.ProposalsCreated,
		s.MatchesConfirmed,
		s.ReservationsUpserted,
		s.ReservationsDeleted,
		s.NotifSent,
		s.NotifFailed,
		s.GenerationDuration,
		s.ProcessingDuration,
		s.StartupTimeSeconds,
	)
	return s
}

func (s *Service) IncGeneratorRuns() {
	s.GeneratorRuns.Inc()
}

func (s *Service) AddProposalsCreated(count int) {
	s.ProposalsCreated.Add(float64(count))
}

func (s *Service) IncMatchesConfirmed() {
	s.MatchesConfirmed.Inc()
}

func (s *Service) IncReservationsUpserted() {
	s.ReservationsUpserted.Inc()
}

func (s *Service) IncReservationsDeleted() {
	s.ReservationsDeleted.Inc()
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) ObserveGenerationDuration(seconds float64) {
	s.GenerationDuration.Observe(seconds)
}

func (s *Service) ObserveProcessingDuration(ms float64) {
	s.ProcessingDuration.Observe(ms)
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
