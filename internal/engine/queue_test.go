package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskQueue_FIFO(t *testing.T) {
	q := newTaskQueue()
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		q.Enqueue(task{name: name, fn: func() { order = append(order, name) }})
	}
	assert.Equal(t, 3, q.Len())

	for {
		tk, ok := q.TryDequeue()
		if !ok {
			break
		}
		tk.fn()
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Zero(t, q.Len())
}

func TestTaskQueue_Drop(t *testing.T) {
	q := newTaskQueue()
	q.Enqueue(task{name: "a"})
	q.Enqueue(task{name: "b"})

	dropped := q.Drop()
	assert.Len(t, dropped, 2)
	assert.Equal(t, "a", dropped[0].name)
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestDrainGuard(t *testing.T) {
	g := newDrainGuard(2)
	assert.NoError(t, g.Check("one"))
	assert.NoError(t, g.Check("two"))

	err := g.Check("three")
	assert.True(t, IsDrainLimitError(err))
	assert.Equal(t, `deferred task "three" exceeded drain limit: 3 steps > 2 limit`, err.Error())
}
