package credentials_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palantir/angellist-enrichment-connector/internal/credentials"
)

func TestRotator_CyclicOrder(t *testing.T) {
	t.Parallel()

	r, err := credentials.NewRotator([]string{"t0", "t1", "t2"})
	require.NoError(t, err)

	var got []string
	for i := 0; i < 7; i++ {
		got = append(got, r.Next())
	}
	assert.Equal(t, []string{"t0", "t1", "t2", "t0", "t1", "t2", "t0"}, got)
}

func TestRotator_ConcurrentCallsStayBalanced(t *testing.T) {
	t.Parallel()

	r, err := credentials.NewRotator([]string{"a", "b", "c"})
	require.NoError(t, err)

	const rounds = 300
	var (
		mu     sync.Mutex
		counts = map[string]int{}
		wg     sync.WaitGroup
	)
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := r.Next()
			mu.Lock()
			counts[c]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, map[string]int{"a": 100, "b": 100, "c": 100}, counts)
	// The cursor is back at the start after a multiple of the pool size.
	assert.Equal(t, "a", r.Next())
}

func TestNewRotator_EmptyPool(t *testing.T) {
	t.Parallel()

	_, err := credentials.NewRotator(nil)
	assert.ErrorIs(t, err, credentials.ErrEmptyPool)

	_, err = credentials.NewRotator([]string{" ", ""})
	assert.ErrorIs(t, err, credentials.ErrEmptyPool)

	r, err := credentials.NewRotator([]string{" x ", ""})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "x", r.Next())
}
