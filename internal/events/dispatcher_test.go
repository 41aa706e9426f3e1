package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversToAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var got []string

	d.Subscribe(EventTicketOpened, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.ChannelID)
		return errors.New("ignored")
	})
	d.Subscribe(EventTicketOpened, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.ChannelID)
		return nil
	})
	d.Subscribe(EventTicketClosed, func(_ context.Context, e Event) error {
		got = append(got, "closed")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketOpened, ChannelID: "c1"}))
	assert.Equal(t, []string{"first:c1", "second:c1"}, got)
}
