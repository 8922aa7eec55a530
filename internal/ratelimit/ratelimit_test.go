package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestTryAcquireOncePerWindow(t *testing.T) {
	l := New(60 * time.Second)
	if !l.TryAcquire(1) {
		t.Fatal("first acquire should succeed")
	}
	if l.TryAcquire(1) {
		t.Error("second acquire within window should fail")
	}
}

func TestIndependentUsers(t *testing.T) {
	l := New(60 * time.Second)
	if !l.TryAcquire(1) {
		t.Fatal("user 1 first acquire should succeed")
	}
	if !l.TryAcquire(2) {
		t.Error("user 2 should not be affected by user 1's window")
	}
}

func TestAcquireAfterCooldown(t *testing.T) {
	l := New(60 * time.Second)
	base := time.Now()
	l.now = func() time.Time { return base }

	if !l.TryAcquire(1) {
		t.Fatal("first acquire should succeed")
	}

	l.now = func() time.Time { return base.Add(61 * time.Second) }
	if !l.TryAcquire(1) {
		t.Error("acquire after cooldown+1s should succeed")
	}
}

func TestSingleWinnerUnderConcurrency(t *testing.T) {
	l := New(60 * time.Second)

	const n = 32
	var wg sync.WaitGroup
	wins := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryAcquire(7) {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	if count != 1 {
		t.Errorf("expected exactly 1 winner, got %d", count)
	}
}

func TestRemaining(t *testing.T) {
	l := New(60 * time.Second)
	base := time.Now()
	l.now = func() time.Time { return base }

	if got := l.Remaining(1); got != 0 {
		t.Errorf("fresh user: remaining %v, want 0", got)
	}
	l.TryAcquire(1)
	l.now = func() time.Time { return base.Add(20 * time.Second) }
	if got := l.Remaining(1); got != 40*time.Second {
		t.Errorf("remaining: got %v, want 40s", got)
	}
	l.now = func() time.Time { return base.Add(2 * time.Minute) }
	if got := l.Remaining(1); got != 0 {
		t.Errorf("expired window: remaining %v, want 0", got)
	}
}
