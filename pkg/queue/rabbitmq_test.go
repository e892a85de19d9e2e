package queue

import (
	"encoding/json"
	"testing"
	"time"

	"propmedia/pkg/events"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishing(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg, err := newPublishing(events.Event{Kind: events.PostDeleted, Origin: "web-1", At: at})
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "post.deleted", msg.Type)
	assert.Equal(t, "web-1", msg.AppId)
	assert.Equal(t, at, msg.Timestamp)
	assert.NotEmpty(t, msg.MessageId)

	var decoded events.Event
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, events.PostDeleted, decoded.Kind)
	assert.Equal(t, "web-1", decoded.Origin)
}

func TestNewPublishing_UnknownKind(t *testing.T) {
	_, err := newPublishing(events.Event{Kind: "post.shared"})
	assert.Error(t, err)
}
