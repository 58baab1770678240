package mail

import "github.com/viant/fluxmesh/errs"

// Visitor handles package payloads by category; a nil handler skips the category
type Visitor struct {
	Message   func(pkg *Package, payload Message) error
	Tool      func(pkg *Package, payload Tool) error
	IModel    func(pkg *Package, payload IModel) error
	Node      func(pkg *Package, payload Node) error
	NodeList  func(pkg *Package, payload NodeList) error
	NodeID    func(pkg *Package, payload NodeID) error
	Start     func(pkg *Package, payload Start) error
	End       func(pkg *Package, payload End) error
	Condition func(pkg *Package, payload Condition) error
	Signal    func(pkg *Package, payload Signal) error
}

// Accept dispatches the payload to the matching visitor handler. It returns
// false when the visitor has no handler for the package category.
func (p *Package) Accept(v *Visitor) (bool, error) {
	if v == nil {
		return false, nil
	}
	switch payload := p.item.(type) {
	case Message:
		return call(v.Message, p, payload)
	case Tool:
		return call(v.Tool, p, payload)
	case IModel:
		return call(v.IModel, p, payload)
	case Node:
		return call(v.Node, p, payload)
	case NodeList:
		return call(v.NodeList, p, payload)
	case NodeID:
		return call(v.NodeID, p, payload)
	case Start:
		return call(v.Start, p, payload)
	case End:
		return call(v.End, p, payload)
	case Condition:
		return call(v.Condition, p, payload)
	case Signal:
		return call(v.Signal, p, payload)
	}
	return false, errs.Validation("unsupported package payload: %T", p.item)
}

func call[T Payload](handler func(*Package, T) error, pkg *Package, payload T) (bool, error) {
	if handler == nil {
		return false, nil
	}
	return true, handler(pkg, payload)
}
