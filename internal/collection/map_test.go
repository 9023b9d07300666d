package collection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncMap(t *testing.T) {
	m := NewSyncMap[string, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Put(string(rune('a'+i%26)), i)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 26, m.Len())

	_, ok := m.Take("a")
	assert.True(t, ok)
	_, ok = m.Take("a")
	assert.False(t, ok)
	m.Delete("b")
	_, ok = m.Get("b")
	assert.False(t, ok)

	visited := 0
	m.Range(func(key string, value int) bool {
		m.Delete(key)
		visited++
		return true
	})
	assert.Equal(t, 24, visited)
	assert.Equal(t, 0, m.Len())
}
