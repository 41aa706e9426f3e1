// Package platform declares the chat-platform surface the ticket lifecycle
// depends on. The Discord adapter lives in platform/discord; in-memory fakes
// for tests live in platform/platformtest.
package platform

import (
	"context"
	"time"
)

// Channel is a guild text channel as seen by the lifecycle. Topic carries the
// ticket identity marker.
type Channel struct {
	ID       string
	Name     string
	ParentID string
	Topic    string
}

// SubjectKind distinguishes permission overwrite targets.
type SubjectKind int

const (
	SubjectRole SubjectKind = iota
	SubjectMember
	// SubjectEveryone targets the guild's default role; SubjectID is ignored.
	SubjectEveryone
)

// Permission is a platform-neutral permission bit.
type Permission int64

const (
	PermissionView Permission = 1 << iota
	PermissionSend
)

// VisibilityRule grants or denies permissions to one role or member.
type VisibilityRule struct {
	SubjectID string
	Kind      SubjectKind
	Allow     Permission
	Deny      Permission
}

// ChannelSpec describes a channel to create. Marker is written as the topic in
// the same call that creates the channel.
type ChannelSpec struct {
	Name       string
	ParentID   string
	Marker     string
	Visibility []VisibilityRule
}

// ChannelDirectory is the guild channel API.
type ChannelDirectory interface {
	CreateChannel(ctx context.Context, spec ChannelSpec) (*Channel, error)
	ListChannels(ctx context.Context, parentID string) ([]Channel, error)
	DeleteChannel(ctx context.Context, channelID string) error
	// FetchChannel returns nil, nil when the channel does not exist.
	FetchChannel(ctx context.Context, channelID string) (*Channel, error)
}

// EmbedField is one name/value row of an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich message card.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Timestamp   time.Time
}

// ControlStyle selects a button style.
type ControlStyle int

const (
	ControlPrimary ControlStyle = iota
	ControlSuccess
	ControlDanger
)

// Control is a button attached to a message.
type Control struct {
	ID    string
	Label string
	Style ControlStyle
}

// Message is an outbound channel or direct message.
type Message struct {
	Content  string
	Embed    *Embed
	Controls []Control
}

// NotificationSink delivers messages. Callers treat failures as non-fatal.
type NotificationSink interface {
	SendToChannel(ctx context.Context, channelID string, msg Message) error
	SendDirect(ctx context.Context, userID string, msg Message) error
}

// Reply answers the interaction that triggered an operation.
type Reply struct {
	Content   string
	Embed     *Embed
	Ephemeral bool
}

// Responder answers one interaction. Only the first Reply is delivered.
type Responder interface {
	Reply(ctx context.Context, reply Reply) error
	Replied() bool
}

// Mention formats a user mention.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// RoleMention formats a role mention.
func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}

// ChannelMention formats a channel link.
func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}
