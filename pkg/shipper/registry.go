package shipper

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered shipping carriers.
type Registry struct {
	carriers map[string]Carrier
	mu       sync.RWMutex
}

// NewRegistry creates a new carrier registry.
func NewRegistry() *Registry {
	return &Registry{
		carriers: make(map[string]Carrier),
	}
}

// Register adds a carrier to the registry.
func (r *Registry) Register(c Carrier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carriers[c.Name()] = c
}

// Get returns a carrier by name.
func (r *Registry) Get(name string) (Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.carriers[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// All returns all registered carriers ordered by name.
func (r *Registry) All() []Carrier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Carrier, 0, len(r.carriers))
	for _, c := range r.carriers {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Names returns the sorted names of all registered carriers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.carriers))
	for name := range r.carriers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered carriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carriers)
}

// CollectAllRates asks every registered carrier for rates in parallel.
// A failing carrier is reported in the error slice and does not hide the
// rates of the others. Results keep the registry's name order.
func (r *Registry) CollectAllRates(ctx context.Context, req *RateRequest) ([]RateOption, []error) {
	carriers := r.All()
	if len(carriers) == 0 {
		return nil, []error{ErrCarrierNotFound}
	}

	responses := make([]*RateResponse, len(carriers))
	errs := make([]error, 0)
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	for i, c := range carriers {
		g.Go(func() error {
			resp, err := c.CollectRates(ctx, req)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
				mu.Unlock()
				return nil // Don't fail the group, continue with other carriers
			}
			responses[i] = resp
			return nil
		})
	}

	_ = g.Wait()

	rates := make([]RateOption, 0, len(carriers))
	for _, resp := range responses {
		if resp != nil {
			rates = append(rates, resp.Rates...)
		}
	}
	return rates, errs
}
