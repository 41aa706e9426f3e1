// Package platformtest provides in-memory platform fakes that record every
// call into a shared Journal so tests can assert on side-effect ordering.
package platformtest

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/spec-kit/ticket-bot/internal/platform"
)

// ErrInjected is returned by fakes configured to fail.
var ErrInjected = errors.New("injected failure")

// Journal is an ordered log of side effects across fakes.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *Journal) add(entry string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

// Entries returns a copy of the journal.
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string{}, j.entries...)
}

// Directory is an in-memory ChannelDirectory.
type Directory struct {
	mu       sync.Mutex
	journal  *Journal
	nextID   int
	channels map[string]*platform.Channel
	rules    map[string][]platform.VisibilityRule
	order    []string

	FailCreate bool
	FailList   bool
	FailDelete bool
	FailFetch  bool
	// OnList runs after a successful list, outside the lock.
	OnList func()
}

// NewDirectory creates an empty directory.
func NewDirectory(journal *Journal) *Directory {
	return &Directory{
		journal:  journal,
		channels: make(map[string]*platform.Channel),
		rules:    make(map[string][]platform.VisibilityRule),
	}
}

// Seed inserts a channel without journaling.
func (d *Directory) Seed(ch platform.Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := ch
	d.channels[c.ID] = &c
	d.order = append(d.order, c.ID)
}

func (d *Directory) CreateChannel(_ context.Context, spec platform.ChannelSpec) (*platform.Channel, error) {
	d.mu.Lock()
	if d.FailCreate {
		d.mu.Unlock()
		return nil, ErrInjected
	}
	d.nextID++
	ch := &platform.Channel{
		ID:       "chan-" + strconv.Itoa(d.nextID),
		Name:     spec.Name,
		ParentID: spec.ParentID,
		Topic:    spec.Marker,
	}
	d.channels[ch.ID] = ch
	d.rules[ch.ID] = append([]platform.VisibilityRule{}, spec.Visibility...)
	d.order = append(d.order, ch.ID)
	d.mu.Unlock()

	d.journal.add("create:" + ch.ID)
	out := *ch
	return &out, nil
}

func (d *Directory) ListChannels(_ context.Context, parentID string) ([]platform.Channel, error) {
	d.mu.Lock()
	if d.FailList {
		d.mu.Unlock()
		return nil, ErrInjected
	}
	var out []platform.Channel
	for _, id := range d.order {
		ch, ok := d.channels[id]
		if ok && ch.ParentID == parentID {
			out = append(out, *ch)
		}
	}
	hook := d.OnList
	d.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (d *Directory) DeleteChannel(_ context.Context, channelID string) error {
	d.mu.Lock()
	if d.FailDelete {
		d.mu.Unlock()
		return ErrInjected
	}
	delete(d.channels, channelID)
	d.mu.Unlock()

	d.journal.add("delete:" + channelID)
	return nil
}

func (d *Directory) FetchChannel(_ context.Context, channelID string) (*platform.Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailFetch {
		return nil, ErrInjected
	}
	ch, ok := d.channels[channelID]
	if !ok {
		return nil, nil
	}
	out := *ch
	return &out, nil
}

// Rules returns the visibility rules a channel was created with.
func (d *Directory) Rules(channelID string) []platform.VisibilityRule {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]platform.VisibilityRule{}, d.rules[channelID]...)
}

// Count returns how many channels exist under parentID.
func (d *Directory) Count(parentID string) int {
	chans, _ := d.ListChannels(context.Background(), parentID)
	return len(chans)
}

// Sent is one delivered message.
type Sent struct {
	Target  string
	Direct  bool
	Message platform.Message
}

// Notifier is a recording NotificationSink.
type Notifier struct {
	mu      sync.Mutex
	journal *Journal
	sent    []Sent

	FailDirect  bool
	FailChannel map[string]bool
}

// NewNotifier creates a recording notifier.
func NewNotifier(journal *Journal) *Notifier {
	return &Notifier{journal: journal, FailChannel: map[string]bool{}}
}

func (n *Notifier) SendToChannel(_ context.Context, channelID string, msg platform.Message) error {
	n.journal.add("channel:" + channelID)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailChannel[channelID] {
		return ErrInjected
	}
	n.sent = append(n.sent, Sent{Target: channelID, Message: msg})
	return nil
}

func (n *Notifier) SendDirect(_ context.Context, userID string, msg platform.Message) error {
	n.journal.add("direct:" + userID)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailDirect {
		return ErrInjected
	}
	n.sent = append(n.sent, Sent{Target: userID, Direct: true, Message: msg})
	return nil
}

// Sent returns delivered messages in order.
func (n *Notifier) Sent() []Sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Sent{}, n.sent...)
}

// SentTo returns messages delivered to one target.
func (n *Notifier) SentTo(target string) []Sent {
	var out []Sent
	for _, s := range n.Sent() {
		if s.Target == target {
			out = append(out, s)
		}
	}
	return out
}

// Responder records interaction replies.
type Responder struct {
	mu      sync.Mutex
	journal *Journal
	replies []platform.Reply

	Fail bool
}

// NewResponder creates a recording responder.
func NewResponder(journal *Journal) *Responder {
	return &Responder{journal: journal}
}

func (r *Responder) Reply(_ context.Context, reply platform.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) > 0 {
		return errors.New("interaction already acknowledged")
	}
	if r.Fail {
		return ErrInjected
	}
	r.replies = append(r.replies, reply)
	r.journal.add("reply")
	return nil
}

func (r *Responder) Replied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.replies) > 0
}

// Last returns the delivered reply, if any.
func (r *Responder) Last() (platform.Reply, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return platform.Reply{}, false
	}
	return r.replies[len(r.replies)-1], true
}
