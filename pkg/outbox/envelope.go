package outbox

import (
	"encoding/json"
	"time"
)

// CurrentVersion is the envelope version written by Emit when none is set.
const CurrentVersion = 1

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}
