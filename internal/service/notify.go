package service

import (
	"context"
	"encoding/json"

	"go-tinapa-shop/internal/event"

	"github.com/rs/zerolog/log"
)

// Notifier pushes realtime messages to connected websocket clients.
type Notifier interface {
	Broadcast(msg []byte)
	SendToUsers(userIDs []string, msg []byte)
}

type nopNotifier struct{}

func (nopNotifier) Broadcast([]byte)            {}
func (nopNotifier) SendToUsers([]string, []byte) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func orNopPublisher(p event.Publisher) event.Publisher {
	if p == nil {
		return event.NopPublisher{}
	}
	return p
}

// push sends payload to the given users, or to everyone when userIDs is empty.
func push(n Notifier, userIDs []string, payload map[string]interface{}) {
	msg, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("marshal websocket payload")
		return
	}
	if len(userIDs) == 0 {
		n.Broadcast(msg)
		return
	}
	n.SendToUsers(userIDs, msg)
}

// publish delivers an event after the owning transaction committed. Failures
// are logged; the committed change stands.
func publish(ctx context.Context, p event.Publisher, topic, key string, payload interface{}) {
	if err := p.Publish(context.WithoutCancel(ctx), topic, key, payload); err != nil {
		log.Error().Err(err).Str("topic", topic).Str("key", key).Msg("failed to publish event")
	}
}

// Actor identifies the user behind a change.
type Actor struct {
	ID    string
	Name  string
	Email string
}

func (a Actor) display() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

func (a Actor) payload() map[string]interface{} {
	return map[string]interface{}{
		"id":    a.ID,
		"name":  a.Name,
		"email": a.Email,
	}
}
