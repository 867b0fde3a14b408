// Package parallelism provides a fixed-size worker pool for fanning out
// independent system calls, such as per-entry metadata queries during a
// directory read.
package parallelism

import (
	"runtime"
	"sync"
)

// stride is a workload submitted to the pool.
type stride struct {
	// count is the exclusive upper bound of the index range.
	count int
	// body is invoked once per index.
	body func(index int) error
}

// Pool encapsulates an array of worker Goroutines. Workloads are divided by
// striding: worker w handles indices w, w+size, w+2*size, and so on.
type Pool struct {
	// lock serializes workloads and termination.
	lock sync.Mutex
	// size is the number of workers.
	size int
	// terminated tracks whether or not the pool has been terminated.
	terminated bool
	// submit is a slice of channels used to submit workloads to workers. These
	// channels are closed to signal termination.
	submit []chan stride
	// results carries per-worker completion results. These channels are closed
	// once worker Goroutines have exited.
	results []chan error
}

// NewPool creates a new pool. If size is zero or negative, a size corresponding
// to the number of system CPUs is used.
func NewPool(size int) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
		if size < 1 {
			panic("invalid number of CPUs")
		}
	}

	pool := &Pool{
		size:    size,
		submit:  make([]chan stride, size),
		results: make([]chan error, size),
	}
	for w := 0; w < size; w++ {
		pool.submit[w] = make(chan stride)
		pool.results[w] = make(chan error)
		go pool.work(w)
	}
	return pool
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return p.size
}

// work is the work loop for worker Goroutines.
func (p *Pool) work(w int) {
	for workload := range p.submit[w] {
		var err error
		for i := w; i < workload.count; i += p.size {
			if err = workload.body(i); err != nil {
				break
			}
		}
		p.results[w] <- err
	}
	close(p.results[w])
}

// ForEach invokes body for every index in [0, count) using the pool's workers
// and blocks until all invocations have completed. A worker stops processing
// its stride at the first error it encounters. The error returned is the
// first non-nil error in worker order. It is safe for concurrent invocation
// (workloads are serialized), but must not be called after Terminate.
func (p *Pool) ForEach(count int, body func(index int) error) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.terminated {
		panic("work submitted to terminated pool")
	}

	// Only wake as many workers as there are indices.
	active := p.size
	if count < active {
		active = count
	}
	workload := stride{count: count, body: body}
	for w := 0; w < active; w++ {
		p.submit[w] <- workload
	}

	var first error
	for w := 0; w < active; w++ {
		if err := <-p.results[w]; err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Terminate stops the pool's workers and waits for them to exit.
func (p *Pool) Terminate() {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.terminated {
		return
	}
	for w := 0; w < p.size; w++ {
		close(p.submit[w])
		<-p.results[w]
	}
	p.terminated = true
}
