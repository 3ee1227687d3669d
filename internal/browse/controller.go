package browse

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lehigh-university-libraries/pustak/internal/models"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrDisposed is returned by a Load whose controller was disposed before it finished.
	ErrDisposed = errors.New("browse: controller disposed")
	// ErrSuperseded is returned by a Load overtaken by a newer Load.
	ErrSuperseded = errors.New("browse: load superseded")
)

type State int

const (
	Idle State = iota
	Loading
	Ready
	LoadError
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case LoadError:
		return "load error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Controller owns one list page: the loaded collection, its lookups and the
// current filter.
type Controller[T Item] struct {
	src Source[T]

	mu       sync.Mutex
	state    State
	loaded   bool
	items    []T
	results  []T
	lookups  models.Lookups
	filter   Filter
	err      error
	gen      uint64
	disposed bool
}

func New[T Item](src Source[T]) *Controller[T] {
	return &Controller[T]{src: src}
}

// Load fetches the items and every lookup concurrently. The first failure
// cancels the rest and fails the whole load. A failed refresh leaves the
// previously loaded data in place.
func (c *Controller[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil, ErrDisposed
	}
	c.gen++
	gen := c.gen
	if !c.loaded {
		c.state = Loading
	}
	c.mu.Unlock()

	var (
		items   []T
		lookups models.Lookups
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.src.Items(gctx)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", c.src.Name, err)
		}
		items = v
		return nil
	})
	for _, l := range c.src.Lookups {
		g.Go(func() error { return l.run(gctx, &lookups) })
	}
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return nil, ErrDisposed
	}
	if gen != c.gen {
		return nil, ErrSuperseded
	}
	if err != nil {
		c.err = err
		if !c.loaded {
			c.state = LoadError
		} else {
			c.state = Ready
		}
		return nil, err
	}

	c.items = items
	c.lookups = lookups
	c.loaded = true
	c.err = nil
	c.state = Ready
	c.results = Apply(c.items, c.filter)
	return slices.Clone(c.results), nil
}

// ApplyFilters narrows the last loaded collection. It makes no network calls.
func (c *Controller[T]) ApplyFilters(f Filter) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	c.results = Apply(c.items, f)
	return slices.Clone(c.results)
}

func (c *Controller[T]) ClearFilters() []T {
	return c.ApplyFilters(Filter{})
}

// Dispose discards the results of any in-flight or future Load.
func (c *Controller[T]) Dispose() {
	c.mu.Lock()
	c.disposed = true
	c.mu.Unlock()
}

func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err is the error of the most recent failed load, or nil after a success.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller[T]) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *Controller[T]) ActiveFilterCount() int {
	return c.Filter().ActiveCount()
}

func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Controller[T]) Results() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.results)
}

func (c *Controller[T]) Lookups() models.Lookups {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookups
}
