package portalclient

import (
	"fmt"
	"sync"
)

const LoginPath = "/login"

// Overlay is the blocking "session expired" prompt. It cannot be dismissed;
// the only way out is LoginAgain.
type Overlay struct {
	identity *IdentitySession

	mu      sync.Mutex
	visible bool
	reason  Reason

	attach      sync.Once
	unsubscribe func()
}

func NewOverlay(identity *IdentitySession) *Overlay {
	return &Overlay{identity: identity}
}

// Attach subscribes the overlay to n. Later calls are no-ops so there is only ever one listener.
func (o *Overlay) Attach(n *Notifier) {
	o.attach.Do(func() {
		o.unsubscribe = n.Subscribe(o.show)
	})
}

func (o *Overlay) Detach() {
	if o.unsubscribe != nil {
		o.unsubscribe()
	}
}

// show keeps the first reason while the overlay is already up.
func (o *Overlay) show(event SessionExpired) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.visible {
		return
	}
	o.visible = true
	o.reason = event.Reason
}

func (o *Overlay) Visible() (bool, Reason) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible, o.reason
}

func (o *Overlay) Message() string {
	_, reason := o.Visible()
	if reason == ReasonForceLogout {
		return "Your session was ended from another device. Please log in again."
	}
	return "Your session has expired. Please log in again."
}

// LoginAgain clears every cached identity value, hides the overlay and returns the
// login path. The overlay stays up if the cache could not be cleared.
func (o *Overlay) LoginAgain() (string, error) {
	if err := o.identity.Clear(); err != nil {
		return "", fmt.Errorf("failed to clear identity: %w", err)
	}

	o.mu.Lock()
	o.visible = false
	o.reason = ""
	o.mu.Unlock()

	return LoginPath, nil
}
