package event

import (
	"time"

	"github.com/viant/fluxmesh/internal/clock"
)

// Event types
const (
	TypeDispatched = "dispatched"
	TypeCompleted  = "completed"
	TypeFailed     = "failed"
)

type Context struct {
	Source      string `json:"source"`
	ItemID      string `json:"itemID"`
	EventType   string `json:"eventType"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
	Error       string `json:"error,omitempty"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
