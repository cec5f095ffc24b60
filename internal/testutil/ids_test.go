package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator("sub")
	assert.Equal(t, "sub-1", g.Generate())
	assert.Equal(t, "sub-2", g.Generate())

	g.Reset()
	assert.Equal(t, "sub-1", g.Generate())

	assert.Equal(t, "id-1", NewSequenceGenerator("").Generate())
}

func TestSequenceGeneratorConcurrentUnique(t *testing.T) {
	g := NewSequenceGenerator("x")
	seen := sync.Map{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup := seen.LoadOrStore(g.Generate(), true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}
