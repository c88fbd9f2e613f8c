package queryevent

import "sync"

// Subscriber receives every Event published on a Bus.
type Subscriber func(Event)

// Bus fans an Event out to every registered Subscriber. The zero value is
// ready to use.
type Bus struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// Subscribe registers fn and returns a function that unregisters it.
func (b *Bus) Subscribe(fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
	idx := len(b.subs) - 1
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < len(b.subs) {
			b.subs[idx] = nil
		}
	}
}

// Publish delivers evt to every live subscriber, synchronously and in
// registration order.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub != nil {
			sub(evt)
		}
	}
}
