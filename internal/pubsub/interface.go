package pubsub

// PubSubClient publishes engine events to interested consumers. A remote
// push received through a subscription can change the whole dataset
// between engine calls, which is why callers re-fetch state per operation.
type PubSubClient interface {
	SendMessage(topic string, data any) error
	ProcessMessage(data []byte, returnValue any) error
}
