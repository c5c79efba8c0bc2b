package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef identifies who produced the event: an admin user or a background job.
type ActorRef struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
