package worker

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fluxmesh/errs"
)

type greeting struct {
	Name  string
	Times int
}

func TestRegistry(t *testing.T) {
	noop := func(ctx context.Context, input interface{}) (interface{}, error) { return input, nil }
	testCases := []struct {
		description string
		tasks       []*Task
		expectErr   error
	}{
		{description: "valid", tasks: []*Task{{Name: "a", Handler: noop}, {Name: "b", Handler: noop}}},
		{description: "empty name", tasks: []*Task{{Handler: noop}}, expectErr: errs.ErrConfiguration},
		{description: "nil task", tasks: []*Task{nil}, expectErr: errs.ErrConfiguration},
		{description: "no handler", tasks: []*Task{{Name: "a"}}, expectErr: errs.ErrConfiguration},
		{description: "duplicate", tasks: []*Task{{Name: "a", Handler: noop}, {Name: "a", Handler: noop}}, expectErr: errs.ErrConfiguration},
		{description: "negative capacity", tasks: []*Task{{Name: "a", Handler: noop, Policy: Policy{Capacity: -1}}}, expectErr: errs.ErrConfiguration},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			registry, err := NewRegistry(tc.tasks...)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, registry.Names())
			task, err := registry.Lookup("a")
			require.NoError(t, err)
			assert.Equal(t, "a", task.Name)
			_, err = registry.Lookup("missing")
			assert.ErrorIs(t, err, errs.ErrLookup)
		})
	}
}

func TestWorker_ShouldRetry(t *testing.T) {
	w, err := New(&Registry{tasks: map[string]*Task{}}, WithRetry(2, 10*time.Millisecond))
	require.NoError(t, err)
	testCases := []struct {
		description string
		retry       *Retry
		attempts    int
		expectRetry bool
		expectDelay time.Duration
	}{
		{description: "defaults", attempts: 1, expectRetry: true, expectDelay: 10 * time.Millisecond},
		{description: "defaults exhausted", attempts: 2},
		{description: "none", retry: &Retry{Type: RetryNone, MaxRetries: 5}},
		{description: "fixed", retry: &Retry{Type: RetryFixed, MaxRetries: 3, Delay: time.Second}, attempts: 2, expectRetry: true, expectDelay: time.Second},
		{description: "fixed exhausted", retry: &Retry{Type: RetryFixed, MaxRetries: 3, Delay: time.Second}, attempts: 3},
		{description: "exponential", retry: &Retry{Type: RetryExponential, MaxRetries: 5, Delay: time.Second, Multiplier: 3}, attempts: 2, expectRetry: true, expectDelay: 9 * time.Second},
		{description: "exponential default multiplier", retry: &Retry{Type: "Exponential", MaxRetries: 5, Delay: time.Second}, attempts: 3, expectRetry: true, expectDelay: 8 * time.Second},
		{description: "exponential capped", retry: &Retry{Type: RetryExponential, MaxRetries: 5, Delay: time.Second, MaxDelay: 3 * time.Second}, attempts: 4, expectRetry: true, expectDelay: 3 * time.Second},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			retry, delay := w.shouldRetry(tc.retry, tc.attempts)
			assert.Equal(t, tc.expectRetry, retry)
			assert.Equal(t, tc.expectDelay, delay)
		})
	}
}

func TestWorker_Perform(t *testing.T) {
	var calls int32
	registry, err := NewRegistry(
		&Task{
			Name:  "greet",
			Input: reflect.TypeOf(greeting{}),
			Handler: func(ctx context.Context, input interface{}) (interface{}, error) {
				in := input.(greeting)
				return fmt.Sprintf("hello %s x%d", in.Name, in.Times), nil
			},
		},
		&Task{
			Name:  "greetPtr",
			Input: reflect.TypeOf(&greeting{}),
			Handler: func(ctx context.Context, input interface{}) (interface{}, error) {
				return input.(*greeting).Name, nil
			},
		},
		&Task{
			Name: "flaky",
			Handler: func(ctx context.Context, input interface{}) (interface{}, error) {
				if atomic.AddInt32(&calls, 1) < 3 {
					return nil, fmt.Errorf("not yet")
				}
				return "done", nil
			},
			Policy: Policy{Capacity: 2, Retry: &Retry{Type: RetryFixed, MaxRetries: 3, Delay: time.Millisecond}},
		},
		&Task{
			Name: "broken",
			Handler: func(ctx context.Context, input interface{}) (interface{}, error) {
				return nil, fmt.Errorf("broken")
			},
			Policy: Policy{Retry: &Retry{Type: RetryNone}},
		},
	)
	require.NoError(t, err)
	w, err := New(registry, WithRefreshInterval(5*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = w.Perform(ctx, "greet", map[string]interface{}{"Name": "bob"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	output, err := w.Perform(ctx, "greet", map[string]interface{}{"Name": "bob", "Times": 2})
	require.NoError(t, err)
	assert.Equal(t, "hello bob x2", output)

	output, err = w.Perform(ctx, "greetPtr", map[string]interface{}{"Name": "ann"})
	require.NoError(t, err)
	assert.Equal(t, "ann", output)

	output, err = w.Perform(ctx, "flaky", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", output)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))

	_, err = w.Perform(ctx, "broken", nil)
	assert.ErrorIs(t, err, errs.ErrExecution)

	_, err = w.Perform(ctx, "missing", nil)
	assert.ErrorIs(t, err, errs.ErrLookup)
}
