package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subjects []string
	bodies   [][]byte
	err      error
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, data)
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestPublisherPublish(t *testing.T) {
	conn := &fakeConn{}
	pub := newPublisher(conn, "eduflow.", nil)

	err := pub.Publish(context.Background(), Event{Type: "payment.processed", OccurredAt: "2024-01-15T00:00:00Z", Payload: map[string]string{"id": "p1"}})
	require.NoError(t, err)

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "eduflow.payment.processed", conn.subjects[0])
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(conn.bodies[0], &decoded))
	assert.Equal(t, "payment.processed", decoded["type"])

	require.NoError(t, pub.Close())
	assert.True(t, conn.closed)
}

func TestPublisherPropagatesErrors(t *testing.T) {
	pub := newPublisher(&fakeConn{err: errors.New("no responders")}, "", nil)

	err := pub.Publish(context.Background(), Event{Type: "payment.refunded"})
	assert.EqualError(t, err, "no responders")
	assert.Equal(t, "payment.refunded", pub.Subject("payment.refunded"))
}

func TestNilPublisherIsNoop(t *testing.T) {
	var pub *Publisher
	assert.NoError(t, pub.Publish(context.Background(), Event{Type: "x"}))
	assert.NoError(t, pub.Close())
}
