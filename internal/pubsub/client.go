package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// New creates a client for the given GCP project. An empty project id
// disables publishing: events are dropped with a debug log instead of
// failing startup.
func New(projectID string) PubSubClient {
	if projectID == "" {
		log.Info("No GCP project configured, event publishing disabled")
		return &disabledClient{}
	}

	ctx := context.Background()
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create pubsub client: %v", err)
	}
	teardown := func() {
		pubSubC.Close()
	}

	return &client{
		client:   pubSubC,
		teardown: teardown,
	}
}

func (c *client) SendMessage(topic string, data any) error {
	ctx := context.Background()
	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	message := &pubsub.Message{
		Data: msgpackData,
	}
	result := c.client.Topic(topic).Publish(ctx, message)
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Debug("Published message", "serverID", serverID, "topic", topic)
	return nil
}

func (c *client) ProcessMessage(data []byte, returnValue any) error {
	// Unmarshal the MessagePack data into the provided pointer struct.
	err := msgpack.Unmarshal(data, returnValue)
	if err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return err
	}
	return nil
}

// disabledClient is used when no GCP project is configured. Messages are
// dropped; inbound payloads still decode so consumers can be tested.
type disabledClient struct{}

func (d *disabledClient) SendMessage(topic string, data any) error {
	log.Debug("Publishing disabled, dropping message", "topic", topic)
	return nil
}

func (d *disabledClient) ProcessMessage(data []byte, returnValue any) error {
	return msgpack.Unmarshal(data, returnValue)
}
