package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/rogerio-castellano/product-catalog/internal/models"
)

type EventType string

const (
	ProductCreated EventType = "product.created"
	ProductUpdated EventType = "product.updated"
	ProductDeleted EventType = "product.deleted"
)

// ProductEvent is published after every successful write to the catalog.
// Product is empty for deletions.
type ProductEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	ProductID int             `json:"product_id"`
	Product   *models.Product `json:"product,omitempty"`
	Time      time.Time       `json:"time"`
}

func NewProductEvent(t EventType, productID int, p *models.Product) ProductEvent {
	return ProductEvent{
		ID:        uuid.NewString(),
		Type:      t,
		ProductID: productID,
		Product:   p,
		Time:      time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e ProductEvent) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ProductEvent) error { return nil }
func (NopPublisher) Close() error                                { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a topic keyed by product id, so all events
// of one product land on the same partition in order.
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e ProductEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal product event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(e.ProductID)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for product %d: %w", e.Type, e.ProductID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
