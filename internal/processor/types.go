package processor

import (
	"github.com/jmadsen/courtline/internal/metrics"
	"github.com/jmadsen/courtline/internal/pubsub"
)

// Processor handles the business logic of advancing scheduled matches
// through the notification pipeline.
type Processor struct {
	store    Store
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
}
