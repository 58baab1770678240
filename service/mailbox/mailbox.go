// Package mailbox implements per-source mail storage: one outbound sequence
// and one inbound sequence per sender, backed by a single mail collection.
package mailbox

import (
	"context"

	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/internal/lock"
	"github.com/viant/fluxmesh/model/id"
	"github.com/viant/fluxmesh/model/mail"
	"github.com/viant/fluxmesh/model/pile"
	"github.com/viant/fluxmesh/model/progression"
)

// Mailbox holds mail of a single source
type Mailbox struct {
	mux        *lock.Mutex
	all        *pile.Pile[*mail.Mail]
	pendingIn  map[id.ID]*progression.Progression
	senders    []id.ID
	pendingOut *progression.Progression
}

// New creates a mailbox
func New() *Mailbox {
	all, _ := pile.New[*mail.Mail]()
	return &Mailbox{
		mux:        lock.New(),
		all:        all,
		pendingIn:  map[id.ID]*progression.Progression{},
		pendingOut: &progression.Progression{},
	}
}

func (m *Mailbox) lockContext(ctx context.Context) (func(), error) {
	if err := m.mux.LockContext(ctx); err != nil {
		return nil, err
	}
	return m.mux.Unlock, nil
}

// AppendOut queues mail for collection
func (m *Mailbox) AppendOut(item *mail.Mail) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.appendOut(item)
}

// AppendOutContext is the context-aware form of AppendOut
func (m *Mailbox) AppendOutContext(ctx context.Context, item *mail.Mail) error {
	unlock, err := m.lockContext(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return m.appendOut(item)
}

func (m *Mailbox) appendOut(item *mail.Mail) error {
	if err := m.include(item); err != nil {
		return err
	}
	return m.pendingOut.Append(item.ID)
}

// AppendIn queues received mail under its sender
func (m *Mailbox) AppendIn(item *mail.Mail) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.appendIn(item)
}

// AppendInContext is the context-aware form of AppendIn
func (m *Mailbox) AppendInContext(ctx context.Context, item *mail.Mail) error {
	unlock, err := m.lockContext(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return m.appendIn(item)
}

func (m *Mailbox) appendIn(item *mail.Mail) error {
	if err := m.include(item); err != nil {
		return err
	}
	return m.inbound(item.Sender).Append(item.ID)
}

func (m *Mailbox) include(item *mail.Mail) error {
	if item == nil {
		return errs.Validation("mail was nil")
	}
	if m.all.Contains(item) {
		return errs.Validation("mail %v already in mailbox", item.ID)
	}
	return m.all.Include(item)
}

func (m *Mailbox) inbound(sender id.ID) *progression.Progression {
	sequence, ok := m.pendingIn[sender]
	if !ok {
		sequence = &progression.Progression{}
		m.pendingIn[sender] = sequence
		m.senders = append(m.senders, sender)
	}
	return sequence
}

func (m *Mailbox) dropSender(sender id.ID) {
	delete(m.pendingIn, sender)
	for i, candidate := range m.senders {
		if candidate == sender {
			m.senders = append(m.senders[:i], m.senders[i+1:]...)
			return
		}
	}
}

// Exclude removes mail from its sequence and from the mailbox
func (m *Mailbox) Exclude(refs ...interface{}) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.exclude(refs)
}

// ExcludeContext is the context-aware form of Exclude
func (m *Mailbox) ExcludeContext(ctx context.Context, refs ...interface{}) error {
	unlock, err := m.lockContext(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return m.exclude(refs)
}

func (m *Mailbox) exclude(refs []interface{}) error {
	keys, err := progression.Flatten(refs...)
	if err != nil {
		return err
	}
	items := make([]*mail.Mail, 0, len(keys))
	for _, key := range keys {
		item, err := m.all.Get(key)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	for _, item := range items {
		_ = m.pendingOut.Exclude(item.ID)
		if sequence, ok := m.pendingIn[item.Sender]; ok {
			_ = sequence.Exclude(item.ID)
			if sequence.Len() == 0 {
				m.dropSender(item.Sender)
			}
		}
	}
	return m.all.Exclude(keys)
}

// PopOut removes and returns the oldest outbound mail
func (m *Mailbox) PopOut() (*mail.Mail, bool) {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.pendingOut.Len() == 0 {
		return nil, false
	}
	key, _ := m.pendingOut.PopLeft()
	item, err := m.all.Pop(key)
	return item, err == nil
}

// DrainOut removes and returns all outbound mail in order
func (m *Mailbox) DrainOut() []*mail.Mail {
	m.mux.Lock()
	defer m.mux.Unlock()
	var ret []*mail.Mail
	for m.pendingOut.Len() > 0 {
		key, _ := m.pendingOut.PopLeft()
		if item, err := m.all.Pop(key); err == nil {
			ret = append(ret, item)
		}
	}
	return ret
}

// PopIn removes and returns the oldest mail received from sender
func (m *Mailbox) PopIn(sender interface{}) (*mail.Mail, bool) {
	key, err := id.Of(sender)
	if err != nil {
		return nil, false
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	sequence, ok := m.pendingIn[key]
	if !ok {
		return nil, false
	}
	ref, _ := sequence.PopLeft()
	if sequence.Len() == 0 {
		m.dropSender(key)
	}
	item, err := m.all.Pop(ref)
	return item, err == nil
}

// Consume passes mail received from sender to fn in order. Mail for which fn
// returns true leaves the mailbox, the rest stays queued in the same order.
// Processing stops at the first error.
func (m *Mailbox) Consume(sender interface{}, fn func(item *mail.Mail) (bool, error)) error {
	key, err := id.Of(sender)
	if err != nil {
		return err
	}
	m.mux.Lock()
	sequence, ok := m.pendingIn[key]
	if !ok {
		m.mux.Unlock()
		return errs.Lookup("no package from %v", key)
	}
	var items []*mail.Mail
	for _, ref := range sequence.IDs() {
		if item, err := m.all.Get(ref); err == nil {
			items = append(items, item)
		}
	}
	m.mux.Unlock()

	var consumed []interface{}
	for _, item := range items {
		done, fnErr := fn(item)
		if done {
			consumed = append(consumed, item.ID)
		}
		if fnErr != nil {
			err = fnErr
			break
		}
	}
	if len(consumed) > 0 {
		m.mux.Lock()
		for _, ref := range consumed {
			if !m.all.Contains(ref) {
				continue
			}
			if exErr := m.exclude([]interface{}{ref}); exErr != nil && err == nil {
				err = exErr
			}
		}
		m.mux.Unlock()
	}
	return err
}

// PendingIn returns mail received from sender in order
func (m *Mailbox) PendingIn(sender interface{}) []*mail.Mail {
	key, err := id.Of(sender)
	if err != nil {
		return nil
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	sequence, ok := m.pendingIn[key]
	if !ok {
		return nil
	}
	return m.resolve(sequence)
}

// PendingOut returns outbound mail in order
func (m *Mailbox) PendingOut() []*mail.Mail {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.resolve(m.pendingOut)
}

func (m *Mailbox) resolve(sequence *progression.Progression) []*mail.Mail {
	ret := make([]*mail.Mail, 0, sequence.Len())
	for _, key := range sequence.IDs() {
		if item, err := m.all.Get(key); err == nil {
			ret = append(ret, item)
		}
	}
	return ret
}

// Senders returns senders with pending inbound mail in first-seen order
func (m *Mailbox) Senders() []id.ID {
	m.mux.Lock()
	defer m.mux.Unlock()
	return append([]id.ID(nil), m.senders...)
}

// Get returns mail by identifier
func (m *Mailbox) Get(ref interface{}) (*mail.Mail, error) {
	return m.all.Get(ref)
}

// Len returns number of mail held
func (m *Mailbox) Len() int {
	return m.all.Len()
}
