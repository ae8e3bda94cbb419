package sitemap

import (
	"sort"
	"sync"
	"time"

	"github.com/lysyi3m/sitemap-comb/app/site"
)

// Registry maps the function names used in the options file to Go functions.
type Registry struct {
	mu          sync.RWMutex
	priorities  map[string]PriorityFunc
	frequencies map[string]FrequencyFunc
	processes   map[string]ProcessFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		priorities:  make(map[string]PriorityFunc),
		frequencies: make(map[string]FrequencyFunc),
		processes:   make(map[string]ProcessFunc),
	}

	r.RegisterPriority("default", DefaultPriority)
	r.RegisterFrequency("default", DefaultFrequency)
	r.RegisterProcess("drop-future", DropFuture(time.Now))
	r.RegisterProcess("sort-by-date", SortByDate)

	return r
}

func (r *Registry) RegisterPriority(name string, fn PriorityFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.priorities[name] = fn
}

func (r *Registry) RegisterFrequency(name string, fn FrequencyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frequencies[name] = fn
}

func (r *Registry) RegisterProcess(name string, fn ProcessFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processes[name] = fn
}

func (r *Registry) Priority(name string) (PriorityFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.priorities[name]
	return fn, ok && fn != nil
}

func (r *Registry) Frequency(name string) (FrequencyFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.frequencies[name]
	return fn, ok && fn != nil
}

func (r *Registry) Process(name string) (ProcessFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.processes[name]
	return fn, ok && fn != nil
}

// DropFuture removes pages whose publish date lies after now().
func DropFuture(now func() time.Time) ProcessFunc {
	return func(pages []site.Page) []site.Page {
		cutoff := now()
		kept := make([]site.Page, 0, len(pages))
		for _, page := range pages {
			if page.Date != nil && page.Date.After(cutoff) {
				continue
			}
			kept = append(kept, page)
		}
		return kept
	}
}

// SortByDate orders pages newest first; undated pages keep their order at the end.
func SortByDate(pages []site.Page) []site.Page {
	sorted := make([]site.Page, len(pages))
	copy(sorted, pages)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Date, sorted[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	return sorted
}
