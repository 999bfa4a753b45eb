package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"venuehub/internal/logger"
)

// Event is the envelope every published message shares.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Producer publishes booking and activity lifecycle events. Publishing
// is best-effort; a broker outage must never fail the request that
// triggered the event.
type Producer struct {
	bookingWriter  *kafka.Writer
	activityWriter *kafka.Writer
	log            *logger.Logger
}

func NewProducer(brokers []string, bookingTopic, activityTopic string, log *logger.Logger) *Producer {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		}
	}

	return &Producer{
		bookingWriter:  newWriter(bookingTopic),
		activityWriter: newWriter(activityTopic),
		log:            log,
	}
}

// PublishBookingEvent emits a booking lifecycle event keyed by the
// booking ID so all events for one booking land on the same partition.
func (p *Producer) PublishBookingEvent(eventType, bookingID string, payload interface{}) error {
	return p.publish(p.bookingWriter, eventType, bookingID, payload)
}

// PublishActivityEvent emits an activity lifecycle event keyed by the
// activity ID.
func (p *Producer) PublishActivityEvent(eventType, activityID string, payload interface{}) error {
	return p.publish(p.activityWriter, eventType, activityID, payload)
}

func (p *Producer) publish(writer *kafka.Writer, eventType, key string, payload interface{}) error {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	err = writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		p.log.Error("KAFKA", fmt.Sprintf("Failed to publish %s for %s: %v", eventType, key, err))
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	p.log.LogKafka("PUBLISH", writer.Topic, fmt.Sprintf("%s for %s", eventType, key))
	return nil
}

func (p *Producer) Close() error {
	if err := p.bookingWriter.Close(); err != nil {
		return err
	}
	return p.activityWriter.Close()
}
