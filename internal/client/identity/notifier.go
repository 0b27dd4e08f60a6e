// Package identity publishes changes of the signed-in user so that every
// user-scoped view can drop its cached data and reload.
package identity

import "sync"

// Reason describes why the active identity changed
type Reason string

const (
	ReasonSignedIn  Reason = "signed_in"
	ReasonSignedOut Reason = "signed_out"
	ReasonSwitched  Reason = "switched"
)

// Identity is the minimal description of a signed-in user.
// The zero value means "nobody is signed in".
type Identity struct {
	UserID string
	Email  string
}

// IsZero reports whether nobody is signed in
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// Change is delivered to subscribers after the active identity changed
type Change struct {
	Previous Identity
	Current  Identity
	Reason   Reason
}

// Notifier fans identity changes out to subscribers.
// Subscribers are called synchronously, in subscription order, outside the lock.
type Notifier struct {
	subs  map[uint64]func(Change)
	order []uint64
	next  uint64
	mu    sync.Mutex
}

// NewNotifier creates a Notifier without subscribers
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uint64]func(Change))}
}

// Subscribe registers fn and returns a function removing it.
// The returned function may be called more than once.
func (n *Notifier) Subscribe(fn func(Change)) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	n.subs[id] = fn
	n.order = append(n.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()

			delete(n.subs, id)
			for i, v := range n.order {
				if v == id {
					n.order = append(n.order[:i], n.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers ch to all current subscribers
func (n *Notifier) Publish(ch Change) {
	n.mu.Lock()
	fns := make([]func(Change), 0, len(n.order))
	for _, id := range n.order {
		fns = append(fns, n.subs[id])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}
