package mailbox

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/model/id"
	"github.com/viant/fluxmesh/model/mail"
)

func newMail(t *testing.T, sender, recipient id.ID, content string) *mail.Mail {
	ret, err := mail.Compose(sender, recipient, mail.CategoryMessage, content, nil)
	require.NoError(t, err)
	return ret
}

func contents(items []*mail.Mail) []interface{} {
	var ret []interface{}
	for _, item := range items {
		ret = append(ret, item.Package.Item().(mail.Message).Content)
	}
	return ret
}

func TestMailbox_Inbound(t *testing.T) {
	box := New()
	owner, a, b := id.New(), id.New(), id.New()
	require.NoError(t, box.AppendIn(newMail(t, b, owner, "b1")))
	require.NoError(t, box.AppendIn(newMail(t, a, owner, "a1")))
	require.NoError(t, box.AppendIn(newMail(t, b, owner, "b2")))
	require.NoError(t, box.AppendInContext(context.Background(), newMail(t, a, owner, "a2")))

	assert.Equal(t, 4, box.Len())
	assert.Equal(t, []id.ID{b, a}, box.Senders())
	assert.Equal(t, []interface{}{"a1", "a2"}, contents(box.PendingIn(a)))
	assert.Equal(t, []interface{}{"b1", "b2"}, contents(box.PendingIn(b.String())))

	item, ok := box.PopIn(b)
	require.True(t, ok)
	assert.Equal(t, "b1", item.Package.Item().(mail.Message).Content)
	item, ok = box.PopIn(b)
	require.True(t, ok)
	assert.Equal(t, "b2", item.Package.Item().(mail.Message).Content)
	_, ok = box.PopIn(b)
	assert.False(t, ok)
	assert.Equal(t, []id.ID{a}, box.Senders())
	assert.Equal(t, 2, box.Len())
}

func TestMailbox_Outbound(t *testing.T) {
	box := New()
	owner, peer := id.New(), id.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, box.AppendOut(newMail(t, owner, peer, fmt.Sprintf("m%d", i))))
	}
	assert.Equal(t, []interface{}{"m0", "m1", "m2"}, contents(box.PendingOut()))

	item, ok := box.PopOut()
	require.True(t, ok)
	assert.Equal(t, "m0", item.Package.Item().(mail.Message).Content)
	assert.Equal(t, []interface{}{"m1", "m2"}, contents(box.DrainOut()))
	assert.Equal(t, 0, box.Len())
	_, ok = box.PopOut()
	assert.False(t, ok)
	assert.Empty(t, box.DrainOut())
}

func TestMailbox_SingleReference(t *testing.T) {
	box := New()
	owner, peer := id.New(), id.New()
	item := newMail(t, peer, owner, "x")
	require.NoError(t, box.AppendIn(item))
	assert.ErrorIs(t, box.AppendOut(item), errs.ErrValidation)
	assert.ErrorIs(t, box.AppendIn(item), errs.ErrValidation)
	assert.ErrorIs(t, box.AppendIn(nil), errs.ErrValidation)
	assert.Equal(t, 1, box.Len())
	assert.Len(t, box.PendingOut(), 0)
}

func TestMailbox_Exclude(t *testing.T) {
	box := New()
	owner, peer := id.New(), id.New()
	in := newMail(t, peer, owner, "in")
	out := newMail(t, owner, peer, "out")
	require.NoError(t, box.AppendIn(in))
	require.NoError(t, box.AppendOut(out))

	err := box.Exclude(in, id.New())
	assert.ErrorIs(t, err, errs.ErrLookup)
	assert.Equal(t, 2, box.Len())
	assert.Len(t, box.PendingIn(peer), 1)

	require.NoError(t, box.ExcludeContext(context.Background(), in, out.ID))
	assert.Equal(t, 0, box.Len())
	assert.Empty(t, box.Senders())
	assert.Empty(t, box.PendingIn(peer))
	assert.Empty(t, box.PendingOut())
}

func TestMailbox_Consume(t *testing.T) {
	box := New()
	owner, peer := id.New(), id.New()
	for _, content := range []string{"keep1", "take1", "keep2", "take2"} {
		require.NoError(t, box.AppendIn(newMail(t, peer, owner, content)))
	}
	var taken []string
	err := box.Consume(peer, func(item *mail.Mail) (bool, error) {
		content := item.Package.Item().(mail.Message).Content.(string)
		if content[:4] == "take" {
			taken = append(taken, content)
			return true, nil
		}
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"take1", "take2"}, taken)
	assert.Equal(t, []interface{}{"keep1", "keep2"}, contents(box.PendingIn(peer)))

	err = box.Consume(peer, func(item *mail.Mail) (bool, error) {
		return true, fmt.Errorf("stop")
	})
	assert.EqualError(t, err, "stop")
	assert.Equal(t, []interface{}{"keep2"}, contents(box.PendingIn(peer)))

	require.NoError(t, box.Consume(peer, func(item *mail.Mail) (bool, error) { return true, nil }))
	assert.Empty(t, box.Senders())
	assert.ErrorIs(t, box.Consume(peer, nil), errs.ErrLookup)
}

func TestMailbox_ConsumeWithConcurrentPop(t *testing.T) {
	box := New()
	owner, peer := id.New(), id.New()
	for _, content := range []string{"m1", "m2", "m3"} {
		require.NoError(t, box.AppendIn(newMail(t, peer, owner, content)))
	}
	var popped *mail.Mail
	var seen []interface{}
	err := box.Consume(peer, func(item *mail.Mail) (bool, error) {
		if popped == nil {
			popped, _ = box.PopIn(peer)
		}
		seen = append(seen, item.Package.Item().(mail.Message).Content)
		return true, nil
	})
	require.NoError(t, err)
	require.NotNil(t, popped)
	assert.Equal(t, []interface{}{"m1", "m2", "m3"}, seen)
	assert.Equal(t, 0, box.Len())
	assert.Empty(t, box.Senders())
	assert.ErrorIs(t, box.Consume(peer, nil), errs.ErrLookup)
}

func TestMailbox_ConcurrentAppend(t *testing.T) {
	box := New()
	owner := id.New()
	senders := []id.ID{id.New(), id.New(), id.New()}
	wg := sync.WaitGroup{}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i, sender := range senders {
		wg.Add(1)
		go func(sender id.ID, useContext bool) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				item, _ := mail.Compose(sender, owner, mail.CategoryMessage, j, nil)
				if useContext {
					assert.NoError(t, box.AppendInContext(ctx, item))
					continue
				}
				assert.NoError(t, box.AppendIn(item))
			}
		}(sender, i%2 == 0)
	}
	wg.Wait()
	assert.Equal(t, 150, box.Len())
	for _, sender := range senders {
		items := box.PendingIn(sender)
		require.Len(t, items, 50)
		for j, item := range items {
			assert.Equal(t, j, item.Package.Item().(mail.Message).Content)
		}
	}
}
