package client

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tntchem/devhub/store"
)

// LoadFailedAlert is the message surfaced when a fetch fails. The previous
// list stays on screen.
const LoadFailedAlert = "Failed to load compounds"

// State is an immutable snapshot of the view: the filtered compound list plus
// the filter inputs that produced it.
type State struct {
	Compounds   []*store.Compound
	Search      string
	PKaFilter   string
	Loading     bool
	SeedPresent bool
	Alert       string
}

// ViewModel holds the fetched compound list and applies the two client-side
// filters. Filter input is debounced; the full list is only refetched on an
// explicit Load.
type ViewModel struct {
	client *Client
	cache  *Cache

	mu        sync.Mutex
	compounds []*store.Compound
	search    string
	pkaFilter string
	loading   bool
	alert     string

	searchDebounce *Debouncer
	pkaDebounce    *Debouncer
	onChange       func(State)
}

// NewViewModel creates a ViewModel. The cache may be nil; onChange may be nil
// when the caller polls State instead of subscribing.
func NewViewModel(c *Client, cache *Cache, debounce time.Duration, onChange func(State)) *ViewModel {
	return &ViewModel{
		client:         c,
		cache:          cache,
		searchDebounce: NewDebouncer(debounce),
		pkaDebounce:    NewDebouncer(debounce),
		onChange:       onChange,
	}
}

// Restore populates the list from the local cache, so something renders
// before the first fetch completes. A cache miss is not an error.
func (vm *ViewModel) Restore(ctx context.Context) error {
	if vm.cache == nil {
		return nil
	}
	compounds, err := vm.cache.Compounds(ctx)
	if err != nil {
		if err == ErrCacheMiss {
			return nil
		}
		return err
	}
	vm.mu.Lock()
	vm.compounds = compounds
	vm.mu.Unlock()
	vm.notify()
	return nil
}

// Load fetches the full list from the server. On failure the previous list is
// kept and an alert is set; on success the result replaces the list and the
// displayed (filtered) view is written to the cache.
func (vm *ViewModel) Load(ctx context.Context) error {
	vm.mu.Lock()
	vm.loading = true
	vm.alert = ""
	vm.mu.Unlock()
	vm.notify()

	compounds, err := vm.client.ListCompounds(ctx)

	// Concurrent loads are last-writer-wins; there is no generation counter.
	vm.mu.Lock()
	vm.loading = false
	if err != nil {
		vm.alert = LoadFailedAlert
		vm.mu.Unlock()
		vm.notify()
		return err
	}
	vm.compounds = compounds
	vm.mu.Unlock()
	vm.notify()

	if vm.cache != nil {
		if cerr := vm.cache.PutCompounds(ctx, vm.State().Compounds); cerr != nil {
			return cerr
		}
	}
	return nil
}

// SetSearch records a name-search keystroke. After the debounce interval the
// filter is applied and a reload is triggered; a fast burst of keystrokes
// reloads only once, for the last value.
func (vm *ViewModel) SetSearch(q string) {
	vm.searchDebounce.Trigger(func() {
		vm.mu.Lock()
		vm.search = q
		vm.mu.Unlock()
		_ = vm.Load(context.Background())
	})
}

// SetPKaFilter records a minimum-pKa keystroke, debounced and reloading like
// SetSearch.
func (vm *ViewModel) SetPKaFilter(threshold string) {
	vm.pkaDebounce.Trigger(func() {
		vm.mu.Lock()
		vm.pkaFilter = threshold
		vm.mu.Unlock()
		_ = vm.Load(context.Background())
	})
}

// SetFilters applies both filters immediately, bypassing the debounce and
// its reload. Used by one-shot callers that have no keystroke stream and call
// Load themselves.
func (vm *ViewModel) SetFilters(search, pkaThreshold string) {
	vm.searchDebounce.Stop()
	vm.pkaDebounce.Stop()
	vm.mu.Lock()
	vm.search = search
	vm.pkaFilter = pkaThreshold
	vm.mu.Unlock()
	vm.notify()
}

// Stop cancels any pending debounced filter changes.
func (vm *ViewModel) Stop() {
	vm.searchDebounce.Stop()
	vm.pkaDebounce.Stop()
}

// State returns the current snapshot with both filters applied. The seed
// offer is driven by the filtered list: filtering the well-known record out
// of view makes the offer reappear.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	filtered := FilterByName(vm.compounds, vm.search)
	filtered = FilterByMinPKa(filtered, vm.pkaFilter)

	return State{
		Compounds:   filtered,
		Search:      vm.search,
		PKaFilter:   vm.pkaFilter,
		Loading:     vm.loading,
		SeedPresent: containsName(filtered, store.SeedCompoundName),
		Alert:       vm.alert,
	}
}

func (vm *ViewModel) notify() {
	if vm.onChange != nil {
		vm.onChange(vm.State())
	}
}

// FilterByName keeps compounds whose name contains the query,
// case-insensitively. An empty query keeps everything.
func FilterByName(compounds []*store.Compound, query string) []*store.Compound {
	if query == "" {
		return compounds
	}
	q := strings.ToLower(query)
	var out []*store.Compound
	for _, c := range compounds {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

// FilterByMinPKa keeps compounds whose pKa is present and at least the given
// threshold. An empty threshold keeps everything; a non-numeric threshold
// matches nothing.
func FilterByMinPKa(compounds []*store.Compound, threshold string) []*store.Compound {
	if threshold == "" {
		return compounds
	}
	min, err := strconv.ParseFloat(threshold, 64)
	if err != nil {
		return nil
	}
	var out []*store.Compound
	for _, c := range compounds {
		if c.Properties.PKa != nil && *c.Properties.PKa >= min {
			out = append(out, c)
		}
	}
	return out
}

func containsName(compounds []*store.Compound, name string) bool {
	for _, c := range compounds {
		if c.Name == name {
			return true
		}
	}
	return false
}
