package infra

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRequestDeduplicatorSingleCall(t *testing.T) {
	d := NewRequestDeduplicator()

	result, shared, err := d.Do(context.Background(), "key", func() (interface{}, error) {
		return "value", nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if shared {
		t.Error("single call should not be marked shared")
	}
	if result.(string) != "value" {
		t.Errorf("result = %v, want value", result)
	}
}

func TestRequestDeduplicatorCoalesces(t *testing.T) {
	d := NewRequestDeduplicator()

	var calls int32
	release := make(chan struct{})

	const waiters = 5
	var wg sync.WaitGroup
	results := make([]string, waiters)
	sharedFlags := make([]bool, waiters)

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, shared, err := d.Do(context.Background(), "token", func() (interface{}, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return "tok-1", nil
			})
			if err != nil {
				t.Errorf("Do failed: %v", err)
				return
			}
			results[i] = result.(string)
			sharedFlags[i] = shared
		}(i)
	}

	// Let all goroutines reach Do before releasing the first fetch
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("fn called %d times, want 1", got)
	}

	sharedCount := 0
	for i := 0; i < waiters; i++ {
		if results[i] != "tok-1" {
			t.Errorf("waiter %d got %q, want tok-1", i, results[i])
		}
		if sharedFlags[i] {
			sharedCount++
		}
	}
	if sharedCount != waiters-1 {
		t.Errorf("shared count = %d, want %d", sharedCount, waiters-1)
	}
}

func TestRequestDeduplicatorDistinctKeys(t *testing.T) {
	d := NewRequestDeduplicator()

	var calls int32
	for _, key := range []string{"a", "b"} {
		_, _, err := d.Do(context.Background(), key, func() (interface{}, error) {
			atomic.AddInt32(&calls, 1)
			return key, nil
		})
		if err != nil {
			t.Fatalf("Do failed: %v", err)
		}
	}

	if calls != 2 {
		t.Errorf("fn called %d times, want 2", calls)
	}
}

func TestRequestDeduplicatorError(t *testing.T) {
	d := NewRequestDeduplicator()

	wantErr := errors.New("fetch failed")
	_, _, err := d.Do(context.Background(), "key", func() (interface{}, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}

	// A failed request is removed from the in-flight map
	if d.Stats() != 0 {
		t.Errorf("Stats() = %d, want 0", d.Stats())
	}
}

func TestRequestDeduplicatorContextCancel(t *testing.T) {
	d := NewRequestDeduplicator()

	release := make(chan struct{})
	defer close(release)

	started := make(chan struct{})
	go func() {
		_, _, _ = d.Do(context.Background(), "slow", func() (interface{}, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := d.Do(ctx, "slow", func() (interface{}, error) {
		t.Error("fn should not run for a coalesced waiter")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
