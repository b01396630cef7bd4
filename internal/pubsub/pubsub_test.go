package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribePublishDelivers(t *testing.T) {
	h := NewHub()
	joined := h.Subscribe("conn1", "news", "sports")
	assert.Equal(t, []string{"news", "sports"}, joined)

	count := h.Publish("news", []byte("hello"))
	assert.Equal(t, 1, count)

	sub := h.channels["news"]["conn1"]
	require.NotNil(t, sub)
	msg := <-sub.Notify
	assert.Equal(t, "news", msg.Channel)
	assert.Equal(t, []byte("hello"), msg.Payload)
}

func TestPublishToChannelWithNoSubscribers(t *testing.T) {
	h := NewHub()
	assert.Equal(t, 0, h.Publish("empty", []byte("x")))
}

func TestUnsubscribeSpecificChannels(t *testing.T) {
	h := NewHub()
	h.Subscribe("conn1", "a", "b")
	left := h.Unsubscribe("conn1", "a")
	assert.Equal(t, []string{"a"}, left)
	assert.Equal(t, 1, h.SubscriptionCount("conn1"))
}

func TestUnsubscribeAllWhenNoChannelsGiven(t *testing.T) {
	h := NewHub()
	h.Subscribe("conn1", "a", "b")
	h.Unsubscribe("conn1")
	assert.Equal(t, 0, h.SubscriptionCount("conn1"))
}

func TestRemoveSubscriberCleansUpChannels(t *testing.T) {
	h := NewHub()
	h.Subscribe("conn1", "a")
	h.Subscribe("conn2", "a")
	h.RemoveSubscriber("conn1")

	assert.Equal(t, 0, h.SubscriptionCount("conn1"))
	nums := h.NumSub("a")
	assert.Equal(t, 1, nums["a"])
}

func TestDropOnFullQueueStillCountsDelivery(t *testing.T) {
	h := NewHub()
	h.Subscribe("conn1", "ch")
	sub := h.channels["ch"]["conn1"]

	for i := 0; i < QueueSize; i++ {
		sub.Notify <- Message{Channel: "ch", Payload: []byte("x")}
	}

	count := h.Publish("ch", []byte("overflow"))
	assert.Equal(t, 1, count)
}

func TestChannelsIntrospection(t *testing.T) {
	h := NewHub()
	h.Subscribe("conn1", "a", "b")
	assert.ElementsMatch(t, []string{"a", "b"}, h.Channels())
	assert.Equal(t, 0, h.NumPat())
}
