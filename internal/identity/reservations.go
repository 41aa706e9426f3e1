package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Reservations guards the check-then-create window of an open. A requester
// holds at most one reservation at a time.
type Reservations interface {
	// Reserve returns ok=false when another open for requesterID is in flight.
	Reserve(ctx context.Context, requesterID string) (release func(), ok bool, err error)
}

type memoryReservations struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryReservations returns a process-local Reservations.
func NewMemoryReservations() Reservations {
	return &memoryReservations{held: make(map[string]struct{})}
}

func (m *memoryReservations) Reserve(_ context.Context, requesterID string) (func(), bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.held[requesterID]; busy {
		return nil, false, nil
	}
	m.held[requesterID] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, requesterID)
			m.mu.Unlock()
		})
	}
	return release, true, nil
}

const reservationKeyPrefix = "ticketbot:open:"

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type redisReservations struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReservations returns Reservations shared by every bot instance using
// the same Redis. The TTL bounds a reservation whose holder crashed.
func NewRedisReservations(client *redis.Client, ttl time.Duration) Reservations {
	return &redisReservations{client: client, ttl: ttl}
}

func (r *redisReservations) Reserve(ctx context.Context, requesterID string) (func(), bool, error) {
	key := reservationKeyPrefix + requesterID
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, r.client, []string{key}, token).Err()
		})
	}
	return release, true, nil
}
