package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferFIFO(t *testing.T) {
	b := newBuffer()
	require.NoError(t, b.PushBack(&message{Kind: "first"}))
	require.NoError(t, b.PushBack(&message{Kind: "second"}))
	assert.Equal(t, 2, b.Size())

	assert.Equal(t, "first", b.Pop().Kind)
	assert.Equal(t, "second", b.Pop().Kind)
	assert.Nil(t, b.Pop())
	assert.Equal(t, 0, b.Size())
}
