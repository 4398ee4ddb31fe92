package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	q := New[[]byte]()
	require.Equal(t, 0, q.Len())
}

func TestPush(t *testing.T) {
	q := New[[]byte]()
	for i := 0; i < 10; i++ {
		q.Push([]byte{0x01, 0x02, 0x03, 0x04})
	}
	require.Equal(t, 10, q.Len())
}

func TestPop(t *testing.T) {
	q := New[[]byte]()
	items := [][]byte{{0x00}, {0x11}, {0x22}, {0x33}, {0x44}}
	for _, item := range items {
		q.Push(item)
	}
	for i := 0; i < len(items); i++ {
		popped := q.Pop()
		require.Equal(t, items[i], popped)
	}
}

func TestConcurrentPush(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			q.Push(v)
		}(i)
	}
	wg.Wait()
	require.Equal(t, 100, q.Len())
}
