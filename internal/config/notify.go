package config

import "sync"

// Observer is called with the new limits after a successful reload.
type Observer func(Limits)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier fans out limit changes to subscribers.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[uint64]Observer
	nextID uint64
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uint64]Observer)}
}

// Subscribe registers an observer for limit changes.
func (n *Notifier) Subscribe(fn Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.subs[id] = fn
	return &Subscription{id: id, notifier: n}
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}

// Notify calls every observer with the new limits, in the caller's
// goroutine.
func (n *Notifier) Notify(limits Limits) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.subs))
	for _, fn := range n.subs {
		observers = append(observers, fn)
	}
	n.mu.RUnlock()

	for _, fn := range observers {
		fn(limits)
	}
}
