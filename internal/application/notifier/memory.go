package notifier

import (
	"context"
	"sync"

	"onboarding/internal/application/models"
	id "onboarding/pkg/domain"
)

// InMemory records every delivered notification. It backs local runs and
// tests; failures can be injected per application.
type InMemory struct {
	mu       sync.RWMutex
	sent     []models.Notification
	failures map[id.ApplicationID]error
	failAll  error
}

func NewInMemory() *InMemory {
	return &InMemory{failures: make(map[id.ApplicationID]error)}
}

func (n *InMemory) Notify(_ context.Context, applicationID id.ApplicationID, name, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failures[applicationID]; ok {
		return err
	}
	if n.failAll != nil {
		return n.failAll
	}
	n.sent = append(n.sent, models.Notification{ApplicationID: applicationID, Name: name, Message: message})
	return nil
}

// FailFor makes deliveries about applicationID return err.
func (n *InMemory) FailFor(applicationID id.ApplicationID, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures[applicationID] = err
}

// FailAll makes every delivery return err. A nil err clears it.
func (n *InMemory) FailAll(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failAll = err
}

// Sent returns a copy of all delivered notifications in order.
func (n *InMemory) Sent() []models.Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]models.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

// NotificationsFor returns the messages delivered to name, in order.
func (n *InMemory) NotificationsFor(name string) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var out []string
	for _, sent := range n.sent {
		if sent.Name == name {
			out = append(out, sent.Message)
		}
	}
	return out
}
