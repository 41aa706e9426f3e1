package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened    EventType = "ticket_opened"
	EventTicketClaimed   EventType = "ticket_claimed"
	EventTicketClosed    EventType = "ticket_closed"
	EventTicketDeleted   EventType = "ticket_deleted"
	EventRatingSubmitted EventType = "rating_submitted"
	EventSettingsChanged EventType = "settings_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ChannelID string      `json:"channel_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	RequesterID string `json:"requester_id"`
	CategoryID  string `json:"category_id"`
	ChannelName string `json:"channel_name"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	RequesterID string `json:"requester_id"`
	ClaimedBy   string `json:"claimed_by"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	RequesterID string    `json:"requester_id"`
	ClosedBy    string    `json:"closed_by"`
	ClaimedBy   *string   `json:"claimed_by,omitempty"`
	DeleteAfter time.Time `json:"delete_after"`
	Notified    bool      `json:"requester_notified"`
	Logged      bool      `json:"log_written"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TaskID   string `json:"task_id"`
	Attempts int    `json:"attempts"`
	Err      string `json:"error,omitempty"`
}

// RatingSubmittedPayload payload. Feedback text is not carried.
type RatingSubmittedPayload struct {
	Score     int  `json:"score"`
	Forwarded bool `json:"forwarded"`
}

// SettingsChangedPayload payload.
type SettingsChangedPayload struct {
	Field string `json:"field"`
	Value string `json:"value"`
}
