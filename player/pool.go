package player

import (
	"context"
	"errors"
	"sync"

	"github.com/jellytok/jellytok/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
)

// DefaultPoolSize covers the active item and both of its neighbours.
const DefaultPoolSize = 3

// ErrExhausted is returned by Acquire when every surface is in use.
var ErrExhausted = errors.New("no playback surface available")

// Factory creates a ready surface.
type Factory func(ctx context.Context) (Surface, error)

// Pool hands out a bounded number of surfaces. A surface is released before
// it becomes available again, so a new occupant never inherits the previous
// one's media.
type Pool struct {
	factory Factory
	size    int

	mu   sync.Mutex
	idle []Surface
	all  []Surface
}

// NewPool returns an empty pool of at most size surfaces.
func NewPool(size int, factory Factory) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Pool{factory: factory, size: size}
}

// Open creates every surface up front, concurrently.
func (p *Pool) Open(ctx context.Context) error {
	p.mu.Lock()
	missing := p.size - len(p.all)
	p.mu.Unlock()
	if missing <= 0 {
		return nil
	}

	workers := pool.NewWithResults[Surface]().WithContext(ctx)
	for i := 0; i < missing; i++ {
		workers.Go(func(ctx context.Context) (Surface, error) {
			return p.factory(ctx)
		})
	}

	surfaces, err := workers.Wait()

	p.mu.Lock()
	for _, s := range surfaces {
		if s == nil {
			continue
		}
		p.all = append(p.all, s)
		p.idle = append(p.idle, s)
	}
	p.mu.Unlock()

	return err
}

// Acquire returns an idle surface, creating one if the pool is not full.
func (p *Pool) Acquire() (Surface, error) {
	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		s := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return s, nil
	}
	if len(p.all) >= p.size {
		p.mu.Unlock()
		return nil, ErrExhausted
	}
	p.mu.Unlock()

	s, err := p.factory(context.Background())
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.all = append(p.all, s)
	p.mu.Unlock()
	return s, nil
}

// Put releases s and returns it to the pool.
func (p *Pool) Put(s Surface) {
	if err := s.Release(); err != nil {
		log.Warnf("release surface: %v", err)
	}

	p.mu.Lock()
	p.idle = append(p.idle, s)
	p.mu.Unlock()
}

// InUse is the number of acquired surfaces.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all) - len(p.idle)
}

// Close terminates every surface concurrently.
func (p *Pool) Close() error {
	p.mu.Lock()
	surfaces := p.all
	p.all, p.idle = nil, nil
	p.mu.Unlock()

	var (
		wg   conc.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, s := range surfaces {
		wg.Go(func() {
			if err := s.Close(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	return errors.Join(errs...)
}
