package exchange

import (
	"github.com/viant/fluxmesh/model/element"
	"github.com/viant/fluxmesh/service/mailbox"
)

// Source is a mail participant that owns a mailbox
type Source interface {
	element.Entity
	Mailbox() *mailbox.Mailbox
}
