package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/health/live", "GET", 200, time.Millisecond)
	m.RecordRequest("/health/live", "GET", 200, time.Millisecond)
	m.RecordError("close_ticket_button", "interaction", "UNAUTHORIZED")
	m.RecordTicketEvent("ticket_opened")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/health/live|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["close_ticket_button|interaction|UNAUTHORIZED"])
	assert.Equal(t, int64(1), snap.TicketEvents["ticket_opened"])

	// snapshot is a copy
	snap.TicketEvents["ticket_opened"] = 99
	assert.Equal(t, int64(1), m.Snapshot().TicketEvents["ticket_opened"])
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordTicketEvent("ticket_closed")
	m.RecordError("a", "b", "c")
	assert.Empty(t, m.Snapshot().TicketEvents)
}
