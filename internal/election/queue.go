package election

import (
	"sync"
)

// job is one municipality waiting to be fetched; index is its listing position
type job struct {
	index int
	ref   MunicipalityRef
}

// Queue is a thread-safe FIFO of municipality jobs
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []job
	stopped bool
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	q := &Queue{
		items: make([]job, 0),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push adds a job and wakes one waiting worker.
// Returns false if the queue is stopped.
func (q *Queue) Push(j job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return false
	}

	q.items = append(q.items, j)
	q.cond.Signal()

	return true
}

// Pop removes and returns the first job.
// Blocks while the queue is empty and not stopped; returns false once stopped and drained.
func (q *Queue) Pop() (job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if len(q.items) > 0 {
			j := q.items[0]
			q.items = q.items[1:]
			return j, true
		}

		if q.stopped {
			return job{}, false
		}

		q.cond.Wait()
	}
}

// Stop refuses new jobs; workers drain what is left, then Pop returns false
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.cond.Broadcast()
}
