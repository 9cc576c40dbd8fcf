package sim

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamesjuett/lobster-sub011/construct"
)

func TestStack_Push(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.True(s.Empty())
	assert.False(s.Full())

	inst := &construct.Instance{}
	assert.NoError(s.Push(inst))
	assert.False(s.Empty())
	assert.Equal(1, s.Depth())
	assert.Same(inst, s.Data[0])
}

func TestStack_Pop(t *testing.T) {
	assert := assert.New(t)

	a, b := &construct.Instance{}, &construct.Instance{}
	s := &Stack{}
	s.Push(a)
	s.Push(b)

	assert.Equal([]*construct.Instance{b, a}, slices.Collect(s.All()))

	got, ok := s.Pop()
	assert.True(ok)
	assert.Same(b, got)

	got, ok = s.Pop()
	assert.True(ok)
	assert.Same(a, got)

	_, ok = s.Pop()
	assert.False(ok)
}

func TestStack_Full(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	for range STACK_LIMIT {
		assert.NoError(s.Push(&construct.Instance{}))
	}
	assert.True(s.Full())
	assert.ErrorIs(s.Push(&construct.Instance{}), ErrStackFull)

	s.Reset()
	assert.True(s.Empty())
}
