package clock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeq_StartsAtZero(t *testing.T) {
	s := NewSeq()
	assert.Equal(t, int64(0), s.Current())
	assert.Equal(t, int64(1), s.Next())
	assert.Equal(t, int64(2), s.Next())
	assert.Equal(t, int64(2), s.Current())
}

func TestSeq_NewSeqAt(t *testing.T) {
	s := NewSeqAt(41)
	assert.Equal(t, int64(41), s.Current())
	assert.Equal(t, int64(42), s.Next())
}

func TestSeq_ConcurrentNextIsUnique(t *testing.T) {
	s := NewSeq()

	const workers = 8
	const perWorker = 250

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				n := s.Next()
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), s.Current())
}
