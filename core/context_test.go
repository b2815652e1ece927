package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := withRunID(withSuppressHeader(context.Background()), "run-42")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runID, ok := getRunID(ctx)
			assert.True(t, shouldSuppressHeader(ctx), "goroutine %d", id)
			assert.True(t, ok, "goroutine %d", id)
			assert.Equal(t, "run-42", runID, "goroutine %d", id)
		}(i)
	}
	wg.Wait()
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))

	_, ok := getRunID(ctx)
	assert.False(t, ok)

	_, ok = getRunID(withRunID(ctx, ""))
	assert.False(t, ok)
}
