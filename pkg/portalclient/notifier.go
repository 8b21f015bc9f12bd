package portalclient

import "sync"

type Reason string

const (
	ReasonForceLogout    Reason = "force_logout"
	ReasonSessionTimeout Reason = "session_timeout"
)

type SessionExpired struct {
	Reason Reason
}

// Notifier fans SessionExpired events out to subscribers synchronously.
type Notifier struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(SessionExpired)
}

func NewNotifier() *Notifier {
	return &Notifier{handlers: make(map[int]func(SessionExpired))}
}

// Subscribe returns a function that removes the handler.
func (n *Notifier) Subscribe(handler func(SessionExpired)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.handlers[id] = handler

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.handlers, id)
	}
}

func (n *Notifier) Publish(event SessionExpired) {
	n.mu.RLock()
	handlers := make([]func(SessionExpired), 0, len(n.handlers))
	for _, h := range n.handlers {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.handlers)
}
