package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_RunsPeriodicTasks(t *testing.T) {
	s := New()
	var count int32
	s.AddTask(func() { atomic.AddInt32(&count, 1) }, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 210*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := atomic.LoadInt32(&count); n < 5 || n > 11 {
		t.Errorf("expected about 10 runs, got %d", n)
	}
}

func TestScheduler_PostRunsOnLoop(t *testing.T) {
	s := New()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ran := make(chan struct{})
	if !s.Post(func() { close(ran); cancel() }) {
		t.Fatal("expected post to be queued")
	}
	s.Run(ctx)

	select {
	case <-ran:
	default:
		t.Error("expected posted function to run")
	}
}

func TestScheduler_PostDropsWhenFull(t *testing.T) {
	s := New()
	for i := 0; i < DefaultQueueSize; i++ {
		if !s.Post(func() {}) {
			t.Fatalf("expected post %d to be queued", i)
		}
	}
	if s.Post(func() {}) {
		t.Error("expected post to be dropped on a full queue")
	}
}

func TestScheduler_AddTaskFromTask(t *testing.T) {
	s := New()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	added := false
	s.AddTask(func() {
		if !added {
			added = true
			s.AddTask(cancel, 10*time.Millisecond)
		}
	}, 10*time.Millisecond)

	start := time.Now()
	s.Run(ctx)
	if !added {
		t.Fatal("expected the first task to run")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected the added task to stop the loop early, took %v", elapsed)
	}
}
