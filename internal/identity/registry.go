package identity

import (
	"sync"
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// Registry is the in-process requester→ticket index. It mirrors channels this
// process has seen; the channel marker stays the source of truth across
// restarts.
type Registry struct {
	mu          sync.Mutex
	byChannel   map[string]*domain.Ticket
	byRequester map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byChannel:   make(map[string]*domain.Ticket),
		byRequester: make(map[string]string),
	}
}

// Track records a ticket, replacing any previous entry for its channel.
func (r *Registry) Track(ticket domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := ticket
	r.byChannel[t.ChannelID] = &t
	r.byRequester[t.RequesterID] = t.ChannelID
}

// Lookup returns a copy of the ticket tracked for channelID.
func (r *Registry) Lookup(channelID string) (domain.Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byChannel[channelID]
	if !ok {
		return domain.Ticket{}, false
	}
	return *t, true
}

// ByRequester returns the channel tracked for requesterID.
func (r *Registry) ByRequester(requesterID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byRequester[requesterID]
	return id, ok
}

// Claim annotates the ticket with its latest claimant. Last claim wins.
func (r *Registry) Claim(channelID, staffID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byChannel[channelID]
	if !ok || t.IsClosed() {
		return false
	}
	claimant := staffID
	t.ClaimedBy = &claimant
	return true
}

// MarkClosed moves the ticket to Closed. It returns false when the ticket is
// unknown or already closed.
func (r *Registry) MarkClosed(channelID string, at time.Time) (domain.Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byChannel[channelID]
	if !ok || t.IsClosed() {
		return domain.Ticket{}, false
	}
	t.State = domain.TicketStateClosed
	closedAt := at
	t.ClosedAt = &closedAt
	return *t, true
}

// Reopen undoes MarkClosed when the close could not be completed.
func (r *Registry) Reopen(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byChannel[channelID]
	if !ok {
		return
	}
	t.State = domain.TicketStateOpen
	t.ClosedAt = nil
}

// Forget drops the ticket once its channel is gone.
func (r *Registry) Forget(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byChannel[channelID]
	if !ok {
		return
	}
	delete(r.byChannel, channelID)
	if r.byRequester[t.RequesterID] == channelID {
		delete(r.byRequester, t.RequesterID)
	}
}

// Len reports how many tickets are tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byChannel)
}
