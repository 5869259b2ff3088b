package rating

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered carrier rate finders.
type Registry struct {
	finders map[string]RateFinder
	mu      sync.RWMutex
}

// NewRegistry creates a new carrier registry.
func NewRegistry() *Registry {
	return &Registry{
		finders: make(map[string]RateFinder),
	}
}

// Register adds a rate finder to the registry.
func (r *Registry) Register(f RateFinder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finders[f.Name()] = f
}

// Get returns a rate finder by carrier name.
func (r *Registry) Get(name string) (RateFinder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.finders[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// All returns all registered rate finders.
func (r *Registry) All() []RateFinder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]RateFinder, 0, len(r.finders))
	for _, f := range r.finders {
		result = append(result, f)
	}
	return result
}

// Names returns the names of all registered carriers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.finders))
	for name := range r.finders {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered carriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.finders)
}

// FindAllRates fetches rate quotes from all registered carriers in
// parallel. Errors from individual carriers are collected but don't fail
// the entire request.
func (r *Registry) FindAllRates(ctx context.Context, origin, destination Location, packages []Package) ([]*RateQuote, []error) {
	finders := r.All()
	if len(finders) == 0 {
		return nil, []error{ErrCarrierNotFound}
	}

	results := make([]*RateQuote, 0, len(finders))
	errs := make([]error, 0)
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	for _, f := range finders {
		f := f
		g.Go(func() error {
			quote, err := f.FindRates(ctx, origin, destination, packages)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", f.Name(), err))
				return nil // continue with other carriers
			}
			results = append(results, quote)
			return nil
		})
	}

	g.Wait()
	return results, errs
}
