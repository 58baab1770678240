package fluxmesh_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/fluxmesh"
	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/logging"
	"github.com/viant/fluxmesh/model/mail"
	"github.com/viant/fluxmesh/model/work"
	"github.com/viant/fluxmesh/service/event"
	"github.com/viant/fluxmesh/service/worker"
)

type job struct {
	*work.Item
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(c *fluxmesh.Config)
		expectErr   bool
	}{
		{description: "default", mutate: func(c *fluxmesh.Config) {}},
		{description: "zero refresh", mutate: func(c *fluxmesh.Config) { c.Processor.RefreshTime = 0 }},
		{description: "zero capacity", mutate: func(c *fluxmesh.Config) { c.Processor.Capacity = 0 }, expectErr: true},
		{description: "negative refresh", mutate: func(c *fluxmesh.Config) { c.Processor.RefreshTime = -1 }, expectErr: true},
		{description: "negative exchange refresh", mutate: func(c *fluxmesh.Config) { c.Exchange.RefreshTime = -0.5 }, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			config := fluxmesh.DefaultConfig()
			tc.mutate(config)
			err := config.Validate()
			if tc.expectErr {
				assert.ErrorIs(t, err, errs.ErrConfiguration)
				_, err = fluxmesh.NewFromConfig(config)
				assert.ErrorIs(t, err, errs.ErrConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("FLUXMESH_TEST_LEVEL", "debug")
	location := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(location, []byte(`
processor:
  capacity: 4
  refreshTime: 0.25
pile:
  strictType: true
  itemTypes:
    - fluxmesh_test.job
exchange:
  refreshTime: 0.5
logging:
  level: ${env.FLUXMESH_TEST_LEVEL}
`), 0o644))
	config, err := fluxmesh.LoadConfig(context.Background(), afs.New(), location)
	require.NoError(t, err)
	assert.Equal(t, 4, config.Processor.Capacity)
	assert.Equal(t, 250*time.Millisecond, config.Processor.RefreshInterval())
	assert.Equal(t, 500*time.Millisecond, config.Exchange.RefreshInterval())
	assert.Equal(t, []string{"fluxmesh_test.job"}, config.Pile.ItemTypes)
	assert.True(t, config.Pile.StrictType)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("processor:\n  capacity: 0\n"), 0o644))
	_, err = fluxmesh.LoadConfig(context.Background(), nil, invalid)
	assert.ErrorIs(t, err, errs.ErrConfiguration)

	_, err = fluxmesh.LoadConfig(context.Background(), nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestService(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	config := fluxmesh.DefaultConfig()
	config.Processor.Capacity = 2
	config.Processor.RefreshTime = 0.01
	config.Exchange.RefreshTime = 0.01
	config.Pile.ItemTypes = []string{"*fluxmesh_test.job"}
	config.Pile.StrictType = true
	buffer := &bytes.Buffer{}
	var mux sync.Mutex
	events := map[string]int{}

	srv, err := fluxmesh.NewFromConfig(config,
		fluxmesh.WithTypes(reflect.TypeOf(job{})),
		fluxmesh.WithLogger(logging.New(logging.Config{Output: buffer})),
		fluxmesh.WithEventListener(func(e *event.Event[work.Event]) {
			mux.Lock()
			events[e.Context.EventType]++
			mux.Unlock()
		}),
		fluxmesh.WithTasks(&worker.Task{
			Name: "double",
			Handler: func(ctx context.Context, input interface{}) (interface{}, error) {
				return input.(int) * 2, nil
			},
		}),
	)
	require.NoError(t, err)
	require.NoError(t, srv.Start(ctx))
	defer srv.Stop()

	var jobs []work.Event
	for i := 0; i < 4; i++ {
		value := i
		jobs = append(jobs, &job{Item: work.New("job", func(ctx context.Context) (interface{}, error) { return value, nil })})
	}
	require.NoError(t, srv.Submit(ctx, jobs...))
	assert.ErrorIs(t, srv.Submit(ctx, work.New("plain", nil)), errs.ErrValidation)
	require.NoError(t, srv.Executor().Forward(ctx))
	require.NoError(t, srv.Executor().Wait(ctx))
	assert.Equal(t, 4, srv.Executor().Status().Completed)
	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return events[event.TypeDispatched] == 4 && events[event.TypeCompleted] == 4
	}, time.Second, 5*time.Millisecond)

	output, err := srv.Perform(ctx, "double", 21)
	require.NoError(t, err)
	assert.Equal(t, 42, output)

	planner, err := srv.NewBranch("planner")
	require.NoError(t, err)
	critic, err := srv.NewBranch("critic")
	require.NoError(t, err)
	_, err = planner.Send(critic, mail.CategoryMessage, "draft", nil)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return len(critic.Mailbox().PendingIn(planner)) == 1
	}, time.Second, 5*time.Millisecond)
	srv.Stop()
	assert.Contains(t, buffer.String(), "service started")
	assert.Contains(t, buffer.String(), "service stopped")
}

func TestService_UnknownItemType(t *testing.T) {
	config := fluxmesh.DefaultConfig()
	config.Pile.ItemTypes = []string{"fluxmesh_test.missing"}
	_, err := fluxmesh.NewFromConfig(config)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}
