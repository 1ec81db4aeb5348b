package decision

import (
	"encoding/json"
	"fmt"

	"swiftvisa/backend/internal/config"
)

// Publisher is the slice of the NSQ producer API we use.
type Publisher interface {
	Publish(topic string, body []byte) error
}

// EventPublisher announces recorded decisions on the message bus so
// downstream consumers can react without polling the audit file.
type EventPublisher struct {
	producer Publisher
}

func NewEventPublisher(producer Publisher) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// Announce publishes the record to the decision topic.
func (p *EventPublisher) Announce(rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal decision event: %w", err)
	}
	if err := p.producer.Publish(config.TopicDecisionRecorded, body); err != nil {
		return fmt.Errorf("publish decision event: %w", err)
	}
	return nil
}
