package domain

import "time"

// DeletionTask is a durable request to delete a closed ticket's channel.
type DeletionTask struct {
	ID        string
	ChannelID string
	DueAt     time.Time
	Attempts  int
	CreatedAt time.Time
}
