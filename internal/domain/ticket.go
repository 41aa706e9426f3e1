package domain

import "time"

// TicketState enumerates lifecycle states for tickets.
type TicketState string

const (
	TicketStateOpen   TicketState = "OPEN"
	TicketStateClosed TicketState = "CLOSED"
)

// Ticket mirrors a ticket channel. The channel itself is the record; its
// topic carries RequesterID.
type Ticket struct {
	RequesterID string
	ChannelID   string
	ChannelName string
	CategoryID  string
	ClaimedBy   *string
	State       TicketState
	OpenedAt    time.Time
	ClosedAt    *time.Time
}

// IsClosed reports whether the ticket reached its terminal state.
func (t *Ticket) IsClosed() bool {
	return t != nil && t.State == TicketStateClosed
}
