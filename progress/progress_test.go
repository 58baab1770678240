package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Update(t *testing.T) {
	var snapshots []Progress
	mux := sync.Mutex{}
	tracker := New("executor", func(p Progress) {
		mux.Lock()
		snapshots = append(snapshots, p)
		mux.Unlock()
	})

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Update(Delta{Total: 1, Pending: 1})
			tracker.Update(Delta{Pending: -1, Running: 1})
			tracker.Update(Delta{Running: -1, Completed: 1})
		}()
	}
	wg.Wait()

	actual := tracker.Snapshot()
	assert.Equal(t, 10, actual.TotalItems)
	assert.Equal(t, 0, actual.PendingItems)
	assert.Equal(t, 0, actual.RunningItems)
	assert.Equal(t, 10, actual.CompletedItems)
	assert.Len(t, snapshots, 30)

	tracker.OnChange(nil)
	tracker.Update(Delta{Failed: 1})
	assert.Len(t, snapshots, 30)
	assert.Equal(t, 1, tracker.Snapshot().FailedItems)

	var none *Progress
	none.Update(Delta{Total: 1})
	assert.Equal(t, Progress{}, none.Snapshot())
}
