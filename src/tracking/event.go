package tracking

import "time"

type Kind string

const (
	KindStandard Kind = "standard"
	KindCustom   Kind = "custom"
)

// Event is the conversion record handed to the pixel relay.
type Event struct {
	EventID   string         `json:"event_id"`
	EventName string         `json:"event_name"`
	Kind      Kind           `json:"kind"`
	PixelID   string         `json:"pixel_id"`
	Session   string         `json:"session"`
	DedupeKey string         `json:"dedupe_key,omitempty"`
	Payload   map[string]any `json:"payload"`
	EventTime time.Time      `json:"event_time"`
}
