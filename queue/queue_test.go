package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnqueuePopOrder(t *testing.T) {
	q := New(4)
	assert.True(t, q.Empty())

	for i := 0; i < 4; i++ {
		ok := q.Enqueue(Entry{SenderID: i, Frame: []byte{byte(i)}})
		assert.True(t, ok)
	}
	assert.True(t, q.Full())
	assert.Equal(t, 4, q.Len())

	// 5th enqueue overflows and is dropped; first four remain, in order.
	assert.False(t, q.Enqueue(Entry{SenderID: 4}))
	assert.Equal(t, 4, q.Len())

	for i := 0; i < 4; i++ {
		assert.Equal(t, i, q.Head().SenderID)
		popped := q.PopHead()
		assert.Equal(t, i, popped.SenderID)
	}
	assert.True(t, q.Empty())
}

func TestHeadRemovePreservesRemainderOrder(t *testing.T) {
	q := New(3)
	q.Enqueue(Entry{SenderID: 1})
	q.Enqueue(Entry{SenderID: 2})
	q.PopHead()
	q.Enqueue(Entry{SenderID: 3})

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 2, q.Head().SenderID)
	q.PopHead()
	assert.Equal(t, 3, q.Head().SenderID)
}
