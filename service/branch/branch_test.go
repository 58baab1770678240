package branch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/model/id"
	"github.com/viant/fluxmesh/model/mail"
	"github.com/viant/fluxmesh/service/exchange"
)

func TestBranch_Send(t *testing.T) {
	a, b := New("a"), New("b")
	item, err := a.Send(b.ID, mail.CategoryMessage, "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, a.ID, item.Sender)
	assert.Equal(t, []*mail.Mail{item}, a.Mailbox().PendingOut())

	_, err = a.Send("bad", mail.CategoryMessage, "hello", nil)
	assert.ErrorIs(t, err, errs.ErrValidation)

	foreign, err := mail.Compose(b.ID, a.ID, mail.CategoryMessage, "x", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, a.SendMail(foreign), errs.ErrValidation)
	assert.ErrorIs(t, a.SendMail(nil), errs.ErrValidation)
	own, err := mail.Compose(a.ID, b.ID, mail.CategoryEnd, "done", nil)
	require.NoError(t, err)
	require.NoError(t, a.SendMail(own))
	assert.Len(t, a.Mailbox().PendingOut(), 2)
}

func TestBranch_Receive(t *testing.T) {
	ctx := context.Background()
	a, b, c := New("a"), New("b"), New("c")
	hub, err := exchange.New(exchange.WithSources(a, b, c))
	require.NoError(t, err)

	_, err = a.Send(b, mail.CategoryMessage, "m1", nil)
	require.NoError(t, err)
	_, err = a.Send(b, mail.CategoryTool, "search", nil)
	require.NoError(t, err)
	_, err = a.Send(b, mail.CategoryMessage, "m2", nil)
	require.NoError(t, err)
	_, err = c.Send(b, mail.CategoryMessage, "c1", nil)
	require.NoError(t, err)
	require.NoError(t, hub.CollectAll(ctx))
	require.NoError(t, hub.DeliverAll(ctx))

	var messages []string
	visitor := &mail.Visitor{
		Message: func(pkg *mail.Package, payload mail.Message) error {
			messages = append(messages, fmt.Sprint(payload.Content))
			return nil
		},
	}
	require.NoError(t, b.Receive(a, visitor))
	assert.Equal(t, []string{"m1", "m2"}, messages)
	pending := b.Mailbox().PendingIn(a)
	require.Len(t, pending, 1)
	assert.Equal(t, mail.CategoryTool, pending[0].Category())

	var tools []string
	visitor.Tool = func(pkg *mail.Package, payload mail.Tool) error {
		tools = append(tools, payload.Name)
		return nil
	}
	require.NoError(t, b.ReceiveAll(visitor))
	assert.Equal(t, []string{"search"}, tools)
	assert.Equal(t, []string{"m1", "m2", "c1"}, messages)
	assert.Empty(t, b.Mailbox().Senders())
	assert.Equal(t, 0, b.Mailbox().Len())

	assert.ErrorIs(t, b.Receive(a, visitor), errs.ErrLookup)
	assert.ErrorIs(t, b.Receive(id.New(), visitor), errs.ErrLookup)
}

func TestBranch_ReceiveError(t *testing.T) {
	ctx := context.Background()
	a, b := New("a"), New("b")
	hub, err := exchange.New(exchange.WithSources(a, b))
	require.NoError(t, err)
	_, err = a.Send(b, mail.CategorySignal, "bad", nil)
	require.NoError(t, err)
	_, err = a.Send(b, mail.CategorySignal, "good", nil)
	require.NoError(t, err)
	require.NoError(t, hub.CollectAll(ctx))
	require.NoError(t, hub.DeliverAll(ctx))

	visitor := &mail.Visitor{
		Signal: func(pkg *mail.Package, payload mail.Signal) error {
			if payload.Name == "bad" {
				return fmt.Errorf("invalid signal %v", payload.Name)
			}
			return nil
		},
	}
	assert.EqualError(t, b.ReceiveAll(visitor), "invalid signal bad")
	assert.Len(t, b.Mailbox().PendingIn(a), 2)
}
