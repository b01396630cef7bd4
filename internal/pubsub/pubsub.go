// Package pubsub implements the channel registry of spec §4.E: a mapping
// from channel name to subscribers, each holding a bounded receive queue so
// a slow subscriber can never block a publisher or OOM the hub. Pattern
// subscriptions (PSUBSCRIBE) are an explicit non-goal and are not
// implemented.
package pubsub

import "sync"

// QueueSize is the default bound on a subscriber's pending-message queue.
const QueueSize = 256

// Message is delivered to a subscriber on a Publish.
type Message struct {
	Channel string
	Payload []byte
}

// Subscriber is a single connection's pub/sub endpoint.
type Subscriber struct {
	ID     string
	Notify chan Message
}

func newSubscriber(id string) *Subscriber {
	return &Subscriber{ID: id, Notify: make(chan Message, QueueSize)}
}

// Hub is the shared channel registry (§4.E).
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[string]*Subscriber // channel -> subscriberID -> subscriber
	subs     map[string]map[string]struct{}    // subscriberID -> set of channels
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[string]*Subscriber),
		subs:     make(map[string]map[string]struct{}),
	}
}

// Subscribe joins subscriberID to channels, creating its queue on first use.
// Returns the channels actually subscribed to, in argument order.
func (h *Hub) Subscribe(subscriberID string, channels ...string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[subscriberID] == nil {
		h.subs[subscriberID] = make(map[string]struct{})
	}

	joined := make([]string, 0, len(channels))
	for _, ch := range channels {
		if h.channels[ch] == nil {
			h.channels[ch] = make(map[string]*Subscriber)
		}
		if _, already := h.channels[ch][subscriberID]; !already {
			h.channels[ch][subscriberID] = h.subscriberFor(subscriberID)
		}
		h.subs[subscriberID][ch] = struct{}{}
		joined = append(joined, ch)
	}
	return joined
}

// subscriberFor returns subscriberID's Subscriber object, reusing one that
// already exists on any other channel so all channels share one queue.
// It does not modify the hub's maps; caller must hold h.mu (read or write).
func (h *Hub) subscriberFor(subscriberID string) *Subscriber {
	for _, subs := range h.channels {
		if sub, ok := subs[subscriberID]; ok {
			return sub
		}
	}
	return newSubscriber(subscriberID)
}

// Unsubscribe removes subscriberID from channels (or every channel it
// joined, if channels is empty). Returns every channel processed: the
// named channels in argument order, whether or not subscriberID had joined
// them, or all of its joined channels when none are named.
func (h *Hub) Unsubscribe(subscriberID string, channels ...string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(channels) == 0 {
		for ch := range h.subs[subscriberID] {
			channels = append(channels, ch)
		}
	}

	left := make([]string, 0, len(channels))
	for _, ch := range channels {
		if subs, ok := h.channels[ch]; ok {
			delete(subs, subscriberID)
			if len(subs) == 0 {
				delete(h.channels, ch)
			}
		}
		delete(h.subs[subscriberID], ch)
		left = append(left, ch)
	}
	if len(h.subs[subscriberID]) == 0 {
		delete(h.subs, subscriberID)
	}
	return left
}

// RemoveSubscriber tears down every subscription for subscriberID, called
// on connection close.
func (h *Hub) RemoveSubscriber(subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[subscriberID] {
		if subs, ok := h.channels[ch]; ok {
			delete(subs, subscriberID)
			if len(subs) == 0 {
				delete(h.channels, ch)
			}
		}
	}
	delete(h.subs, subscriberID)
}

// SubscriptionCount returns how many channels subscriberID currently joins.
func (h *Hub) SubscriptionCount(subscriberID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[subscriberID])
}

// Publish delivers payload to every subscriber of channel, dropping the
// message for any subscriber whose queue is full rather than blocking —
// the drop still counts toward the delivered total, matching Redis's
// PUBLISH return value being "recipients notified", not "recipients that
// will see it" (§4.E, §9).
func (h *Hub) Publish(channel string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.channels[channel]
	if !ok {
		return 0
	}
	count := 0
	msg := Message{Channel: channel, Payload: payload}
	for _, sub := range subs {
		select {
		case sub.Notify <- msg:
		default:
		}
		count++
	}
	return count
}

// Channels lists every channel with at least one subscriber.
func (h *Hub) Channels() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.channels))
	for ch := range h.channels {
		out = append(out, ch)
	}
	return out
}

// NumSub returns the subscriber count for each requested channel.
func (h *Hub) NumSub(channels ...string) map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(channels))
	for _, ch := range channels {
		out[ch] = len(h.channels[ch])
	}
	return out
}

// NumPat always reports 0: pattern subscriptions are not implemented.
func (h *Hub) NumPat() int { return 0 }

// NotifyChannel returns subscriberID's message queue, so a connection can
// select on it alongside its read loop once it holds at least one
// subscription. ok is false if subscriberID has never subscribed.
func (h *Hub) NotifyChannel(subscriberID string) (ch chan Message, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, exists := h.subs[subscriberID]; !exists {
		return nil, false
	}
	sub := h.subscriberFor(subscriberID)
	return sub.Notify, true
}
