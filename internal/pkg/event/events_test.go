package event

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEnvelope(t *testing.T) {
	ev := NewPostCreated("p-1", "a-1", "alice", "标题")

	assert.Equal(t, TypePostCreated, ev.Type())
	assert.Equal(t, "p-1", ev.Key())

	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &fields))
	assert.Equal(t, "post_created", fields["event_type"])
	assert.Equal(t, "posts-service", fields["service"])
	assert.NotEmpty(t, fields["timestamp"])
	assert.Equal(t, "p-1", fields["post_id"])
	assert.Equal(t, "alice", fields["author_username"])
}

func TestPostPublishedCarriesTimestamp(t *testing.T) {
	publishedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ev := NewPostPublished("p-1", "a-1", "alice", "标题", publishedAt)

	assert.Equal(t, "2025-06-01T12:00:00Z", ev.PublishedAt)
	assert.Equal(t, TypePostPublished, ev.Type())
}
