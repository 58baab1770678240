// Package mailmanager exposes the exchange through a manager addressed by raw
// source identifiers. Routing is strict: collecting mail for an unknown
// recipient is reported.
package mailmanager

import (
	"context"
	"time"

	"github.com/viant/fluxmesh/model/id"
	"github.com/viant/fluxmesh/model/mail"
	"github.com/viant/fluxmesh/service/exchange"
)

// Manager moves mail between sources
type Manager struct {
	exchange *exchange.Service
}

// New creates a manager for sources
func New(sources []exchange.Source, options ...exchange.Option) (*Manager, error) {
	options = append([]exchange.Option{exchange.WithStrictRouting(true), exchange.WithSources(sources...)}, options...)
	service, err := exchange.New(options...)
	if err != nil {
		return nil, err
	}
	return &Manager{exchange: service}, nil
}

// Exchange returns the underlying exchange
func (m *Manager) Exchange() *exchange.Service {
	return m.exchange
}

// AddSource registers sources
func (m *Manager) AddSource(sources ...exchange.Source) error {
	return m.exchange.AddSource(sources...)
}

// DeleteSource unregisters a source and discards its pending mail
func (m *Manager) DeleteSource(source interface{}) error {
	return m.exchange.DeleteSource(source)
}

// CreateMail composes mail between any two identifiers
func (m *Manager) CreateMail(sender, recipient interface{}, category mail.Category, item interface{}, requestSource interface{}) (*mail.Mail, error) {
	return mail.Compose(sender, recipient, category, item, requestSource)
}

// Collect stages the outbound mail of sender
func (m *Manager) Collect(ctx context.Context, sender interface{}) error {
	return m.exchange.Collect(ctx, sender)
}

// Send delivers mail staged for recipient
func (m *Manager) Send(ctx context.Context, recipient interface{}) error {
	return m.exchange.Deliver(ctx, recipient)
}

// CollectAll stages outbound mail of every source
func (m *Manager) CollectAll(ctx context.Context) error {
	return m.exchange.CollectAll(ctx)
}

// SendAll delivers staged mail to every source
func (m *Manager) SendAll(ctx context.Context) error {
	return m.exchange.DeliverAll(ctx)
}

// Execute collects and sends mail every refresh interval until Stop or ctx is done
func (m *Manager) Execute(ctx context.Context, refresh time.Duration) error {
	return m.exchange.Execute(ctx, refresh)
}

// Stop stops Execute
func (m *Manager) Stop() {
	m.exchange.Stop()
}

// Mails returns mail staged for recipient keyed by sender
func (m *Manager) Mails(recipient interface{}) map[id.ID][]*mail.Mail {
	return m.exchange.Staged(recipient)
}

// Sources returns registered source identifiers
func (m *Manager) Sources() []id.ID {
	sources := m.exchange.Sources()
	ret := make([]id.ID, 0, len(sources))
	for _, source := range sources {
		ret = append(ret, source.Identity())
	}
	return ret
}
