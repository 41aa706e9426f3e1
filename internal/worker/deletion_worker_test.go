package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/identity"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/platform/platformtest"
	"github.com/spec-kit/ticket-bot/internal/repository"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newScheduler(t *testing.T, repo repository.DeletionRepository, dir platform.ChannelDirectory, clock *fakeClock) (*DeletionScheduler, *identity.Registry, *[]events.Event) {
	t.Helper()
	registry := identity.NewRegistry()
	dispatcher := events.NewInMemoryDispatcher(nil)
	var published []events.Event
	dispatcher.Subscribe(events.EventTicketDeleted, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})
	s := NewDeletionScheduler(DeletionDependencies{
		Repo:         repo,
		Directory:    dir,
		Registry:     registry,
		Dispatcher:   dispatcher,
		PollInterval: time.Second,
		MaxAttempts:  3,
		Now:          clock.Now,
	})
	return s, registry, &published
}

func TestDeletionScheduler_DeletesAfterGrace(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	dir := platformtest.NewDirectory(nil)
	dir.Seed(platform.Channel{ID: "c1", ParentID: "cat", Topic: "alice"})
	s, registry, published := newScheduler(t, repository.NewMemoryDeletionRepository(), dir, clock)
	registry.Track(domain.Ticket{ChannelID: "c1", RequesterID: "alice"})
	ctx := context.Background()

	_, err := s.Schedule(ctx, "c1", 3*time.Second)
	require.NoError(t, err)

	n, err := s.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "not yet due")
	assert.Equal(t, 1, dir.Count("cat"))

	clock.Advance(3 * time.Second)
	n, err = s.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, dir.Count("cat"))
	assert.Equal(t, 0, registry.Len())
	require.Len(t, *published, 1)
	assert.Equal(t, "c1", (*published)[0].ChannelID)
}

func TestDeletionScheduler_SurvivesRestart(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := repository.NewMemoryDeletionRepository()
	dir := platformtest.NewDirectory(nil)
	dir.Seed(platform.Channel{ID: "c1", ParentID: "cat", Topic: "alice"})

	first, _, _ := newScheduler(t, repo, dir, clock)
	_, err := first.Schedule(context.Background(), "c1", 3*time.Second)
	require.NoError(t, err)

	// A new scheduler over the same repository picks the task up.
	clock.Advance(10 * time.Second)
	second, _, _ := newScheduler(t, repo, dir, clock)
	n, err := second.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, dir.Count("cat"))
}

func TestDeletionScheduler_RetriesThenDrops(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := repository.NewMemoryDeletionRepository()
	dir := platformtest.NewDirectory(nil)
	dir.FailDelete = true
	s, _, published := newScheduler(t, repo, dir, clock)
	ctx := context.Background()

	_, err := s.Schedule(ctx, "c1", 0)
	require.NoError(t, err)

	n, err := s.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "first failure is rescheduled")

	clock.Advance(time.Minute)
	n, err = s.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "second failure is rescheduled")

	clock.Advance(time.Minute)
	n, err = s.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "third failure drops the task")

	due, err := repo.ListDue(ctx, clock.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, due)
	require.Len(t, *published, 1)
	payload := (*published)[0].Payload.(events.TicketDeletedPayload)
	assert.Equal(t, 3, payload.Attempts)
	assert.NotEmpty(t, payload.Err)
}

func TestDeletionScheduler_RunStopsOnCancel(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s, _, _ := newScheduler(t, repository.NewMemoryDeletionRepository(), platformtest.NewDirectory(nil), clock)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
