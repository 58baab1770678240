package processor

import (
	"context"

	"github.com/viant/fluxmesh/model/work"
	"golang.org/x/time/rate"
)

// Permission decides whether an item may be dispatched now. A denied item
// still consumes a capacity slot and is requeued at the tail before the
// processing pass ends. It must not call Drain on the same processor.
type Permission func(ctx context.Context, item work.Event) bool

// RateLimit returns a permission granting dispatch while limiter has tokens
func RateLimit(limiter *rate.Limiter) Permission {
	return func(ctx context.Context, item work.Event) bool {
		return limiter.Allow()
	}
}
