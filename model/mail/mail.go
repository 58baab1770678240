package mail

import (
	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/model/element"
	"github.com/viant/fluxmesh/model/id"
)

// Mail is an envelope moving a package from sender to recipient
type Mail struct {
	element.Element
	Sender    id.ID    `json:"sender" yaml:"sender"`
	Recipient id.ID    `json:"recipient" yaml:"recipient"`
	Package   *Package `json:"package" yaml:"package"`
}

// Category returns package category
func (m *Mail) Category() Category {
	if m.Package == nil {
		return 0
	}
	return m.Package.Category()
}

// New creates a mail; sender and recipient are any identifier reference
func New(sender, recipient interface{}, pkg *Package) (*Mail, error) {
	if pkg == nil {
		return nil, errs.Validation("mail package was nil")
	}
	from, err := id.Of(sender)
	if err != nil {
		return nil, errs.Validation("invalid mail sender: %v", err)
	}
	to, err := id.Of(recipient)
	if err != nil {
		return nil, errs.Validation("invalid mail recipient: %v", err)
	}
	return &Mail{Element: element.New(), Sender: from, Recipient: to, Package: pkg}, nil
}

// Compose creates a package and wraps it into a mail
func Compose(sender, recipient interface{}, category Category, item interface{}, requestSource interface{}) (*Mail, error) {
	pkg, err := NewPackage(category, item, requestSource)
	if err != nil {
		return nil, err
	}
	return New(sender, recipient, pkg)
}
