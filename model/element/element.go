// Package element defines the base entity embedded by collection items,
// packages and mail.
package element

import (
	"time"

	"github.com/viant/fluxmesh/internal/clock"
	"github.com/viant/fluxmesh/model/id"
)

// Entity is anything with a stable identity
type Entity = id.Identifier

// Element carries an identity, creation time and free-form metadata
type Element struct {
	ID        id.ID                  `json:"id" yaml:"id"`
	CreatedAt time.Time              `json:"created_at" yaml:"created_at"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Identity returns the element identifier
func (e *Element) Identity() id.ID {
	return e.ID
}

// Set sets a metadata value
func (e *Element) Set(key string, value interface{}) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
}

// Value returns a metadata value
func (e *Element) Value(key string) (interface{}, bool) {
	value, ok := e.Metadata[key]
	return value, ok
}

// New creates an element with a fresh identifier
func New() Element {
	return Element{ID: id.New(), CreatedAt: clock.Now()}
}
