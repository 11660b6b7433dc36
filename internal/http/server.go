package http

import (
	"net/http"

	"github.com/jmadsen/courtline/internal/booking"
	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/compat"
	"github.com/jmadsen/courtline/internal/config"
	"github.com/jmadsen/courtline/internal/generator"
	"github.com/jmadsen/courtline/internal/metrics"
	"github.com/jmadsen/courtline/internal/notifier"
	"github.com/jmadsen/courtline/internal/processor"
	"github.com/jmadsen/courtline/internal/pubsub"
)

func NewServer(store club.ClubStore, bookingStore booking.BookingStore, gen *generator.Generator, compatModel *compat.Model, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Booking:        bookingStore,
		Generator:      gen,
		Compat:         compatModel,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/availability", Chain(s.AvailabilityHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/players/available", Chain(s.AvailablePlayersHandler(), paramsMiddleware))
	s.Router.Handle("/courts", Chain(s.ListCourtsHandler(), paramsMiddleware))
	s.Router.Handle("/courts/free", Chain(s.FreeCourtHandler(), paramsMiddleware))
	s.Router.Handle("/reservations", Chain(s.ReservationsHandler(), paramsMiddleware))
	s.Router.Handle("/reservations/delete", Chain(s.DeleteReservationHandler(), paramsMiddleware))
	s.Router.Handle("/reservations/clear", Chain(s.ClearReservationsHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/matches/generate", Chain(s.GenerateMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/matches/generate-week", Chain(s.GenerateWeekHandler(), paramsMiddleware))
	s.Router.Handle("/matches/confirm", Chain(s.ConfirmMatchHandler(), paramsMiddleware))
	s.Router.Handle("/compatibility", Chain(s.CompatibilityHandler(), paramsMiddleware))
	s.Router.Handle("/feedback", Chain(s.FeedbackHandler(), paramsMiddleware))
	s.Router.Handle("/process", Chain(s.ProcessMatchesHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
