package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nfrund/applydash/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPublisher implements pubsub.Publisher for testing.
type mockPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (m *mockPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) getMessages() []pubsub.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]pubsub.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func TestCenter_Notify(t *testing.T) {
	pub := &mockPublisher{}
	center := NewCenter(pub)

	center.Notify(context.Background(), LevelError, "HTTP error! status: 500")

	active := center.Active()
	require.Len(t, active, 1)
	assert.Equal(t, LevelError, active[0].Level)
	assert.Equal(t, "HTTP error! status: 500", active[0].Message)
	assert.NotEmpty(t, active[0].ID)

	msgs := pub.getMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, TopicCreated.Name(), msgs[0].Topic)

	var published Notification
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &published))
	assert.Equal(t, active[0].ID, published.ID)
}

func TestCenter_Expiry(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	center := NewCenter(nil)
	center.now = func() time.Time { return now }

	center.Notify(context.Background(), LevelInfo, "first")
	now = now.Add(3 * time.Second)
	center.Notify(context.Background(), LevelInfo, "second")

	assert.Len(t, center.Active(), 2)

	now = now.Add(3 * time.Second)
	active := center.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "second", active[0].Message)
}

func TestCenter_ConcurrentNotify(t *testing.T) {
	pub := &mockPublisher{}
	center := NewCenter(pub)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			center.Notify(context.Background(), LevelError, fmt.Sprintf("failure %d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, pub.getMessages(), 50, "every notification is published exactly once")
	assert.Len(t, center.Active(), maxActive, "visible toasts stay bounded")

	seen := map[string]bool{}
	for _, n := range center.Active() {
		assert.False(t, seen[n.ID], "notification ids are unique")
		seen[n.ID] = true
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := &Console{W: &buf}
	c.Notify(context.Background(), LevelSuccess, "Found 12 jobs!")
	assert.Equal(t, "[success] Found 12 jobs!\n", buf.String())
}
