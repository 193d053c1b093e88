package worker

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// QueuePerWorker is the number of pending tasks buffered per worker.
const QueuePerWorker = 16

var (
	// ErrStopped is returned by Submit once Stop has been called.
	ErrStopped = errors.New("worker pool stopped")
	// ErrQueueFull is returned by Submit when every worker is busy and the queue is full.
	ErrQueueFull = errors.New("worker queue full")
)

// Task represents a unit of work executed by the pool.
type Task func()

// Pool defines a simple worker pool.
type Pool interface {
	Submit(Task) error
	Stop()
}

// NewPool creates a pool with n workers and a queue of n*QueuePerWorker tasks.
// n<=0 defaults to 1. A panicking task is logged and does not take its worker down.
func NewPool(n int, log zerolog.Logger) Pool {
	if n <= 0 {
		n = 1
	}
	p := &pool{jobs: make(chan Task, n*QueuePerWorker), log: log}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.run(job)
			}
		}()
	}
	return p
}

type pool struct {
	jobs    chan Task
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
	log     zerolog.Logger
}

func (p *pool) run(job Task) {
	if job == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("worker task panicked")
		}
	}()
	job()
}

// Submit never blocks; it fails with ErrQueueFull instead.
func (p *pool) Submit(t Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop waits for queued tasks to finish. Calling it twice is a no-op.
func (p *pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
