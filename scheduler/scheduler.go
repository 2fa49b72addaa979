// Package scheduler runs periodic tasks and posted callbacks on a single
// goroutine, so the code they call never needs locking.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// DefaultQueueSize is the capacity of the Post queue
const DefaultQueueSize = 256

const idleWait = time.Hour

type task struct {
	fn       func()
	interval time.Duration
	next     time.Time
}

type Scheduler struct {
	mu    sync.Mutex
	tasks []*task
	posts chan func()
	wake  chan struct{}
}

func New() *Scheduler {
	return &Scheduler{
		posts: make(chan func(), DefaultQueueSize),
		wake:  make(chan struct{}, 1),
	}
}

// AddTask runs fn every interval, first after one interval. It may be called
// from inside a running task.
func (s *Scheduler) AddTask(fn func(), interval time.Duration) {
	if interval <= 0 {
		interval = time.Millisecond
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, &task{fn: fn, interval: interval, next: time.Now().Add(interval)})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Post queues fn to run on the task goroutine. It returns false when the
// queue is full and fn was dropped.
func (s *Scheduler) Post(fn func()) bool {
	select {
	case s.posts <- fn:
		return true
	default:
		return false
	}
}

// due returns the tasks to run now and the time of the next deadline
func (s *Scheduler) due(now time.Time) ([]*task, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var run []*task
	next := now.Add(idleWait)
	for _, t := range s.tasks {
		if !t.next.After(now) {
			run = append(run, t)
			t.next = t.next.Add(t.interval)
			// skip missed deadlines instead of running in a burst
			if !t.next.After(now) {
				t.next = now.Add(t.interval)
			}
		}
		if t.next.Before(next) {
			next = t.next
		}
	}
	return run, next
}

// Run executes tasks until ctx is done
func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(idleWait)
	defer timer.Stop()

	for {
		run, next := s.due(time.Now())
		for _, t := range run {
			t.fn()
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(time.Until(next))

		select {
		case <-ctx.Done():
			return nil
		case fn := <-s.posts:
			fn()
		case <-s.wake:
		case <-timer.C:
		}
	}
}
