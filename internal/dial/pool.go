package dial

import "sync"

// Pool tracks worker goroutines so teardown can join all of them.
type Pool struct {
	wg sync.WaitGroup
}

// Go runs fn in a tracked goroutine.
func (p *Pool) Go(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fn()
	}()
}

// Wait blocks until every goroutine started with Go has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
