// Package id defines the opaque identifier used by every fluxmesh entity.
package id

import (
	"github.com/google/uuid"
	"github.com/viant/fluxmesh/errs"
)

// ID is a random (version 4) UUID. It is comparable and can be used as a map key.
type ID struct {
	uuid uuid.UUID
}

// Nil is the zero identifier, it is never valid
var Nil = ID{}

// Identifier is implemented by anything that exposes a stable identity.
type Identifier interface {
	Identity() ID
}

// New returns a new random identifier
func New() ID {
	return ID{uuid: uuid.New()}
}

// Parse parses a canonical UUID4 string
func Parse(value string) (ID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil || parsed.Version() != 4 {
		return Nil, errs.Validation("value must be a UUID4 or a valid UUID4 string: %q", value)
	}
	return ID{uuid: parsed}, nil
}

// Must is like Parse but panics on error
func Must(value string) ID {
	ret, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return ret
}

// Of resolves an identifier from an ID, uuid.UUID, string or Identifier reference.
func Of(ref interface{}) (ID, error) {
	switch actual := ref.(type) {
	case ID:
		if actual.IsNil() {
			return Nil, errs.Validation("nil identifier")
		}
		return actual, nil
	case *ID:
		if actual == nil {
			return Nil, errs.Validation("nil identifier")
		}
		return Of(*actual)
	case uuid.UUID:
		if actual.Version() != 4 {
			return Nil, errs.Validation("value must be a UUID4 or a valid UUID4 string: %v", actual)
		}
		return ID{uuid: actual}, nil
	case string:
		return Parse(actual)
	case Identifier:
		return Of(actual.Identity())
	case nil:
		return Nil, errs.Validation("nil identifier")
	}
	return Nil, errs.Validation("unsupported identifier reference %T", ref)
}

// IsNil returns true for the zero identifier
func (i ID) IsNil() bool {
	return i.uuid == uuid.Nil
}

// UUID returns underlying uuid
func (i ID) UUID() uuid.UUID {
	return i.uuid
}

// String returns the canonical string form
func (i ID) String() string {
	return i.uuid.String()
}

// MarshalText implements encoding.TextMarshaler
func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.uuid.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (i *ID) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
