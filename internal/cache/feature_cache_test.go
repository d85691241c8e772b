package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/churnlens/backend/internal/contracts"
	"github.com/wonny/churnlens/backend/internal/pipeline"
)

type fakeCompute struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func (f *fakeCompute) Compute(ctx context.Context) (*pipeline.RunResult, error) {
	n := f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.RunResult{
		RunID: fmt.Sprintf("run_%d", n),
		Table: &contracts.FeatureTable{
			AsOfDate: time.Date(2018, 10, 17, 0, 0, 0, 0, time.UTC),
			Rows:     []contracts.CustomerFeature{{CustomerUniqueID: "u1"}},
		},
	}, nil
}

func TestFeatureCache_HitAfterCompute(t *testing.T) {
	f := &fakeCompute{}
	c := NewFeatureCache(f.Compute, true, nil)

	assert.Nil(t, c.Peek())

	s1, err := c.GetOrCompute(context.Background(), false)
	require.NoError(t, err)
	s2, err := c.GetOrCompute(context.Background(), false)
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Same(t, s1, c.Peek())
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, "run_1", s1.RunID)
}

func TestFeatureCache_ConcurrentMissesComputeOnce(t *testing.T) {
	f := &fakeCompute{release: make(chan struct{})}
	c := NewFeatureCache(f.Compute, true, nil)

	const workers = 16
	var wg sync.WaitGroup
	results := make([]*Snapshot, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := c.GetOrCompute(context.Background(), false)
			assert.NoError(t, err)
			results[i] = snap
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(f.release)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	for _, snap := range results {
		assert.Same(t, results[0], snap)
	}
}

func TestFeatureCache_InvalidateDuringCompute(t *testing.T) {
	f := &fakeCompute{started: make(chan struct{}, 1), release: make(chan struct{})}
	c := NewFeatureCache(f.Compute, true, nil)

	done := make(chan *Snapshot, 1)
	go func() {
		snap, err := c.GetOrCompute(context.Background(), false)
		assert.NoError(t, err)
		done <- snap
	}()

	<-f.started
	c.Invalidate()
	close(f.release)

	stale := <-done
	require.NotNil(t, stale)
	assert.Nil(t, c.Peek(), "result computed before invalidation must not be published")

	f.started = nil
	fresh, err := c.GetOrCompute(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
	assert.Same(t, fresh, c.Peek())
	assert.Equal(t, uint64(1), fresh.Generation)
}

func TestFeatureCache_ForceRecomputes(t *testing.T) {
	f := &fakeCompute{}
	c := NewFeatureCache(f.Compute, true, nil)

	s1, err := c.GetOrCompute(context.Background(), false)
	require.NoError(t, err)
	s2, err := c.GetOrCompute(context.Background(), true)
	require.NoError(t, err)

	assert.NotSame(t, s1, s2)
	assert.Equal(t, "run_2", s2.RunID)
	assert.Same(t, s2, c.Peek())
}

func TestFeatureCache_Disabled(t *testing.T) {
	f := &fakeCompute{}
	c := NewFeatureCache(f.Compute, false, nil)
	assert.False(t, c.Enabled())

	_, err := c.GetOrCompute(context.Background(), false)
	require.NoError(t, err)
	_, err = c.GetOrCompute(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.calls.Load())
	assert.Nil(t, c.Peek())
}

func TestFeatureCache_ErrorNotCached(t *testing.T) {
	f := &fakeCompute{err: errors.New("source unavailable")}
	c := NewFeatureCache(f.Compute, true, nil)

	_, err := c.GetOrCompute(context.Background(), false)
	require.Error(t, err)
	assert.Nil(t, c.Peek())

	f.err = nil
	snap, err := c.GetOrCompute(context.Background(), false)
	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestFeatureCache_CallerCancel(t *testing.T) {
	f := &fakeCompute{started: make(chan struct{}, 1), release: make(chan struct{})}
	c := NewFeatureCache(f.Compute, true, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(ctx, false)
		errCh <- err
	}()

	<-f.started
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	// the shared computation still completes and publishes
	close(f.release)
	require.Eventually(t, func() bool { return c.Peek() != nil }, time.Second, 5*time.Millisecond)
}

func TestFeatureCache_OnPublish(t *testing.T) {
	f := &fakeCompute{}
	c := NewFeatureCache(f.Compute, true, nil)

	var published []string
	c.OnPublish(func(_ context.Context, snap *Snapshot) {
		published = append(published, snap.RunID)
	})

	_, err := c.GetOrCompute(context.Background(), false)
	require.NoError(t, err)
	_, err = c.GetOrCompute(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"run_1"}, published)
}
