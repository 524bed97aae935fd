package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventBranchCreated  EventType = "branch_created"
	EventBranchUpdated  EventType = "branch_updated"
	EventBranchDeleted  EventType = "branch_deleted"
	EventUserRegistered EventType = "user_registered"
	EventUserUpdated    EventType = "user_updated"
	EventUserDeleted    EventType = "user_deleted"
)

// subscriberBuffer is how many events a slow stream may lag before it starts losing them
const subscriberBuffer = 10

// Event is one message of the dashboard stream. Seq increases by one per published event.
type Event struct {
	Seq  uint64    `json:"-"`
	Type EventType `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

// EventBus fans dashboard change notifications out to SSE subscribers.
// A nil *EventBus discards everything published to it.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	seq         atomic.Uint64
	dropped     atomic.Uint64
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string]chan Event)}
}

// Subscribe registers id and returns its event channel. The channel is closed once ctx is done.
func (eb *EventBus) Subscribe(ctx context.Context, id string) <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	eb.mu.Lock()
	if old, exists := eb.subscribers[id]; exists {
		close(old)
	}
	eb.subscribers[id] = ch
	eb.mu.Unlock()

	go func() {
		<-ctx.Done()
		eb.unsubscribe(id, ch)
	}()
	return ch
}

// unsubscribe closes ch if it is still the channel registered for id
func (eb *EventBus) unsubscribe(id string, ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if current, exists := eb.subscribers[id]; exists && current == ch {
		close(ch)
		delete(eb.subscribers, id)
	}
}

// SubscriberCount returns the number of open streams
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Dropped returns how many deliveries were skipped because a subscriber's buffer was full
func (eb *EventBus) Dropped() uint64 {
	return eb.dropped.Load()
}

// Publish stamps the event and offers it to every subscriber without blocking
func (eb *EventBus) Publish(eventType EventType, data any) {
	if eb == nil {
		return
	}
	event := Event{
		Seq:  eb.seq.Add(1),
		Type: eventType,
		At:   time.Now().UTC(),
		Data: data,
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			eb.dropped.Add(1)
		}
	}
}

// PublishBranchChange announces a branch create, update or delete
func (eb *EventBus) PublishBranchChange(eventType EventType, branchID int64) {
	eb.Publish(eventType, map[string]int64{"sucursalId": branchID})
}

// PublishUserChange announces a user registration, update or delete
func (eb *EventBus) PublishUserChange(eventType EventType, userID int64) {
	eb.Publish(eventType, map[string]int64{"userId": userID})
}

// FormatSSE renders event as an SSE frame. The sequence number becomes the frame id.
func FormatSSE(event Event) (string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", event.Seq, event.Type, payload), nil
}
