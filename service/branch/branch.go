// Package branch provides a conversational unit that exchanges mail with
// other sources through its mailbox.
package branch

import (
	"errors"

	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/model/element"
	"github.com/viant/fluxmesh/model/mail"
	"github.com/viant/fluxmesh/service/mailbox"
)

// Branch is a mail source
type Branch struct {
	element.Element
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	mailbox *mailbox.Mailbox
}

// New creates a branch
func New(name string) *Branch {
	return &Branch{Element: element.New(), Name: name, mailbox: mailbox.New()}
}

// Mailbox returns branch mailbox
func (b *Branch) Mailbox() *mailbox.Mailbox {
	return b.mailbox
}

// Send packages item and queues it for recipient
func (b *Branch) Send(recipient interface{}, category mail.Category, item interface{}, requestSource interface{}) (*mail.Mail, error) {
	ret, err := mail.Compose(b.ID, recipient, category, item, requestSource)
	if err != nil {
		return nil, err
	}
	return ret, b.mailbox.AppendOut(ret)
}

// SendMail queues mail composed elsewhere; the branch has to be its sender
func (b *Branch) SendMail(item *mail.Mail) error {
	if item == nil {
		return errs.Validation("mail was nil")
	}
	if item.Sender != b.ID {
		return errs.Validation("mail sender %v is not branch %v", item.Sender, b.ID)
	}
	return b.mailbox.AppendOut(item)
}

// Receive hands mail from sender to the visitor in arrival order. Handled mail
// leaves the mailbox; mail of categories the visitor skips stays queued.
func (b *Branch) Receive(sender interface{}, visitor *mail.Visitor) error {
	return b.mailbox.Consume(sender, func(item *mail.Mail) (bool, error) {
		handled, err := item.Package.Accept(visitor)
		if err != nil {
			return false, err
		}
		return handled, nil
	})
}

// ReceiveAll receives mail from every sender
func (b *Branch) ReceiveAll(visitor *mail.Visitor) error {
	var errList []error
	for _, sender := range b.mailbox.Senders() {
		if err := b.Receive(sender, visitor); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
