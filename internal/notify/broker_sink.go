package notify

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// RoutingKey is the queue notifications are published to.
const RoutingKey = "storefront_notifications"

// Publisher publishes a raw message under a routing key.
type Publisher interface {
	Publish(routingKey string, body []byte) error
}

// BrokerSink publishes notifications as JSON to a message broker.
type BrokerSink struct {
	publisher Publisher
	logger    zerolog.Logger
}

// NewBrokerSink creates a new BrokerSink.
func NewBrokerSink(publisher Publisher, logger zerolog.Logger) *BrokerSink {
	return &BrokerSink{publisher: publisher, logger: logger}
}

// Notify implements Sink. Publish failures are logged and dropped.
func (s *BrokerSink) Notify(_ context.Context, n Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal notification")
		return
	}
	if err := s.publisher.Publish(RoutingKey, body); err != nil {
		s.logger.Warn().Err(err).Str("user_id", n.UserID).Msg("failed to publish notification")
	}
}
