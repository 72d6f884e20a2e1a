package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight[string]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			got, err, _ := g.Do("snapshot-key", func() (string, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(50 * time.Millisecond)
				return "ok", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if got != "ok" {
				t.Errorf("unexpected value %q", got)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_DoForgetsKeyAfterError(t *testing.T) {
	var g SingleFlight[int]
	errBoom := errors.New("boom")

	if _, err, _ := g.Do("k", func() (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}

	got, err, shared := g.Do("k", func() (int, error) { return 7, nil })
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if got != 7 || shared {
		t.Fatalf("expected fresh execution with 7, got %d shared=%v", got, shared)
	}
}
