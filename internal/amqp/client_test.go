package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(uint64, bool) error {
	f.acked = true
	return nil
}
func (f *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}
func (f *fakeAck) Reject(uint64, bool) error { return nil }

type fakeChannel struct {
	published  []amqp091.Publishing
	key        string
	deliveries chan amqp091.Delivery
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	f.key = key
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp091.Table) (<-chan amqp091.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Close() error { return nil }

func newTestClient(ch *fakeChannel) *Client {
	return &Client{channel: ch, exchangeName: "bills", queueName: "bills.parse", logger: slog.Default()}
}

func TestPublishParseRequest(t *testing.T) {
	ch := &fakeChannel{}
	c := newTestClient(ch)

	require.NoError(t, c.PublishParseRequest(context.Background(), NewParseRequestMessage("doc-1", "u1", "req-1")))
	require.Len(t, ch.published, 1)
	assert.Equal(t, "bills.parse", ch.key)
	assert.Equal(t, amqp091.Persistent, ch.published[0].DeliveryMode)

	var got ParseRequestMessage
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &got))
	assert.Equal(t, "doc-1", got.DocumentID)
	assert.Equal(t, "u1", got.CallerUID)
}

func TestHandleDelivery(t *testing.T) {
	c := newTestClient(&fakeChannel{})

	ok := &fakeAck{}
	c.handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ok, Body: []byte(`{"documentId":"doc-1"}`)},
		func(context.Context, *ParseRequestMessage) error { return nil })
	assert.True(t, ok.acked)

	bad := &fakeAck{}
	c.handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: bad, Body: []byte(`{`)},
		func(context.Context, *ParseRequestMessage) error { return nil })
	assert.True(t, bad.nacked)
	assert.False(t, bad.requeued)

	failing := &fakeAck{}
	c.handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: failing, Body: []byte(`{"documentId":"doc-2"}`)},
		func(context.Context, *ParseRequestMessage) error { return errors.New("queue closed") })
	assert.True(t, failing.nacked)
	assert.True(t, failing.requeued)
}

func TestConsumeStopsOnContext(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery, 1)}
	c := newTestClient(ch)

	ack := &fakeAck{}
	ch.deliveries <- amqp091.Delivery{Acknowledger: ack, Body: []byte(`{"documentId":"doc-1","callerUid":"u1"}`)}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	var seen string
	err := c.ConsumeParseRequests(ctx, func(_ context.Context, m *ParseRequestMessage) error {
		seen = m.DocumentID
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "doc-1", seen)
	assert.True(t, ack.acked)
}

func TestParseRequestMessageRequiresDocumentID(t *testing.T) {
	_, err := ParseRequestMessageFromJSON([]byte(`{"callerUid":"u1"}`))
	assert.Error(t, err)
}
