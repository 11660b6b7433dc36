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

type Server struct {
	Store          club.ClubStore
	Booking        booking.BookingStore
	Generator      *generator.Generator
	Compat         *compat.Model
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
