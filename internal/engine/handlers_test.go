package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerSetOrderAndRemove(t *testing.T) {
	var s HandlerSet[func() int]
	a := s.Add(func() int { return 1 })
	s.Add(func() int { return 2 })
	c := s.Add(func() int { return 3 })
	require.NotEqual(t, a, c)

	s.Remove(a)
	s.Remove(Token("unknown"))
	fns := s.Snapshot()
	require.Len(t, fns, 2)
	assert.Equal(t, 2, fns[0]())
	assert.Equal(t, 3, fns[1]())
	assert.Equal(t, 2, s.Len())
}

func TestSubscriptionFuncNil(t *testing.T) {
	var f SubscriptionFunc
	assert.NotPanics(t, func() { f.Unsubscribe() })
	called := false
	SubscriptionFunc(func() { called = true }).Unsubscribe()
	assert.True(t, called)
}
