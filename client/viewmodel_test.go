package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tntchem/devhub/store"
)

func ptr[T any](v T) *T { return &v }

func compound(name string, pka *float64) *store.Compound {
	c := &store.Compound{Name: name}
	c.Properties.PKa = pka
	return c
}

func testCompounds() []*store.Compound {
	return []*store.Compound{
		compound("P4-t-Bu", ptr(42.0)),
		compound("DBU", ptr(24.3)),
		compound("Proton Sponge", ptr(12.1)),
		compound("Mystery Base", nil),
	}
}

func names(compounds []*store.Compound) []string {
	out := make([]string, len(compounds))
	for i, c := range compounds {
		out[i] = c.Name
	}
	return out
}

func TestFilterByName(t *testing.T) {
	all := testCompounds()

	assert.Equal(t, all, FilterByName(all, ""))
	assert.Equal(t, []string{"DBU"}, names(FilterByName(all, "dbu")))
	assert.Equal(t, []string{"Proton Sponge"}, names(FilterByName(all, "ON")))
	assert.Empty(t, FilterByName(all, "xyz"))
}

func TestFilterByMinPKa(t *testing.T) {
	all := testCompounds()

	assert.Equal(t, all, FilterByMinPKa(all, ""))
	assert.Equal(t, []string{"P4-t-Bu", "DBU"}, names(FilterByMinPKa(all, "24.3")))
	assert.Equal(t, []string{"P4-t-Bu"}, names(FilterByMinPKa(all, "25")))

	// Compounds without a pKa never match a numeric threshold.
	assert.NotContains(t, names(FilterByMinPKa(all, "0")), "Mystery Base")

	// A non-numeric threshold matches nothing at all.
	assert.Empty(t, FilterByMinPKa(all, "high"))
}

func compoundServer(t *testing.T, fail *atomic.Bool, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/compounds", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if fail != nil && fail.Load() {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"compounds":[
			{"name":"P4-t-Bu","properties":{"pKa":42,"energy_eV":0.85,"is_superbase":true}},
			{"name":"DBU","properties":{"pKa":24.3,"is_superbase":false}}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestViewModelLoadAndFilter(t *testing.T) {
	srv := compoundServer(t, nil, nil)
	vm := NewViewModel(New(srv.URL, ""), nil, 0, nil)
	defer vm.Stop()

	require.NoError(t, vm.Load(context.Background()))

	state := vm.State()
	assert.Len(t, state.Compounds, 2)
	assert.True(t, state.SeedPresent)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Alert)

	// Filtering the well-known record out of view clears the seed flag even
	// though the record still exists server-side.
	vm.SetFilters("dbu", "")
	state = vm.State()
	assert.Equal(t, []string{"DBU"}, names(state.Compounds))
	assert.False(t, state.SeedPresent)
}

func TestViewModelLoadFailureKeepsListAndSetsAlert(t *testing.T) {
	fail := &atomic.Bool{}
	srv := compoundServer(t, fail, nil)
	vm := NewViewModel(New(srv.URL, ""), nil, 0, nil)
	defer vm.Stop()

	require.NoError(t, vm.Load(context.Background()))
	require.Len(t, vm.State().Compounds, 2)

	fail.Store(true)
	require.Error(t, vm.Load(context.Background()))

	state := vm.State()
	assert.Len(t, state.Compounds, 2, "previous list stays on screen")
	assert.Equal(t, LoadFailedAlert, state.Alert)
	assert.False(t, state.Loading)

	// A later successful load clears the alert.
	fail.Store(false)
	require.NoError(t, vm.Load(context.Background()))
	assert.Empty(t, vm.State().Alert)
}

func TestViewModelCacheRoundTrip(t *testing.T) {
	srv := compoundServer(t, nil, nil)
	cachePath := filepath.Join(t.TempDir(), "cache.db")

	cache, err := OpenCache(cachePath)
	require.NoError(t, err)
	vm := NewViewModel(New(srv.URL, ""), cache, 0, nil)
	require.NoError(t, vm.Load(context.Background()))
	vm.Stop()
	require.NoError(t, cache.Close())

	// A fresh view model restores the previous result before any fetch.
	cache, err = OpenCache(cachePath)
	require.NoError(t, err)
	defer cache.Close()

	vm = NewViewModel(New(srv.URL, ""), cache, 0, nil)
	defer vm.Stop()
	require.NoError(t, vm.Restore(context.Background()))
	assert.Equal(t, []string{"P4-t-Bu", "DBU"}, names(vm.State().Compounds))
}

func TestViewModelDebouncedSearch(t *testing.T) {
	srv := compoundServer(t, nil, nil)
	vm := NewViewModel(New(srv.URL, ""), nil, 20*time.Millisecond, nil)
	defer vm.Stop()
	require.NoError(t, vm.Load(context.Background()))

	vm.SetSearch("d")
	vm.SetSearch("db")
	vm.SetSearch("dbu")

	// Nothing applies until the quiet interval elapses.
	assert.Empty(t, vm.State().Search)

	assert.Eventually(t, func() bool {
		return vm.State().Search == "dbu"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"DBU"}, names(vm.State().Compounds))
}

func TestDebouncedFilterChangeReloadsFromServer(t *testing.T) {
	hits := &atomic.Int64{}
	srv := compoundServer(t, nil, hits)
	vm := NewViewModel(New(srv.URL, ""), nil, 20*time.Millisecond, nil)
	defer vm.Stop()

	require.NoError(t, vm.Load(context.Background()))
	require.Equal(t, int64(1), hits.Load())

	// A burst of keystrokes settles into exactly one fresh fetch.
	vm.SetSearch("d")
	vm.SetSearch("db")
	assert.Eventually(t, func() bool { return hits.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(2), hits.Load())

	assert.Equal(t, "db", vm.State().Search)
	assert.Equal(t, []string{"DBU"}, names(vm.State().Compounds))

	// The pKa filter reloads the same way.
	vm.SetPKaFilter("30")
	assert.Eventually(t, func() bool { return hits.Load() == 3 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int64
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int64
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(0), calls.Load())
}
