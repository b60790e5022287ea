// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/tagcache"
//	"github.com/unkn0wn-root/tagcache/hooks/async"
//	"github.com/unkn0wn-root/tagcache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    DanglingEvery: 10, // sample logs: ~every 10th dangling drop
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := tagcache.New[User](tagcache.Options[User]{
//	    Client: rdb,
//	    Hooks:  hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/tagcache"
)

type Hooks struct {
	inner tagcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ tagcache.Hooks = (*Hooks)(nil)

func New(inner tagcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) DanglingTagEntry(tag string, e tagcache.TagEntry) {
	h.try(func() { h.inner.DanglingTagEntry(tag, e) })
}
func (h *Hooks) CorruptTagEntry(tag string) { h.try(func() { h.inner.CorruptTagEntry(tag) }) }
func (h *Hooks) TagsReplaced(e tagcache.TagEntry, removed int) {
	h.try(func() { h.inner.TagsReplaced(e, removed) })
}
func (h *Hooks) ScanDegraded(pattern, reason string) {
	h.try(func() { h.inner.ScanDegraded(pattern, reason) })
}
func (h *Hooks) LocalSetRejected(key string) { h.try(func() { h.inner.LocalSetRejected(key) }) }
