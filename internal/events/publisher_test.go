package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogerio-castellano/product-catalog/internal/models"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}

	product := &models.Product{ID: 7, Name: "X", Quantity: 3, Price: 5.5}
	e := NewProductEvent(ProductUpdated, 7, product)
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "7", string(msg.Key))
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, string(ProductUpdated), string(msg.Headers[0].Value))

	var decoded ProductEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, ProductUpdated, decoded.Type)
	assert.Equal(t, product, decoded.Product)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{w: &fakeWriter{err: errors.New("broker unavailable")}}

	err := p.Publish(context.Background(), NewProductEvent(ProductDeleted, 3, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product.deleted")
}

func TestNewProductEvent_UniqueIDs(t *testing.T) {
	a := NewProductEvent(ProductCreated, 1, nil)
	b := NewProductEvent(ProductCreated, 1, nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEmpty(t, a.ID)
}
