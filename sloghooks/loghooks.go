package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/tagcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	DanglingEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	danglingCtr atomic.Uint64
}

var _ tagcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) DanglingTagEntry(tag string, e tagcache.TagEntry) {
	if h.l == nil || !sample(h.opts.DanglingEvery, &h.danglingCtr) {
		return
	}
	h.l.Debug("tagcache.dangling_tag_entry",
		"tag", tag,
		"kind", e.Kind.String(),
		"key", h.redact(e.Key))
}

func (h *Hooks) CorruptTagEntry(tag string) {
	if h.l == nil {
		return
	}
	h.l.Warn("tagcache.corrupt_tag_entry", "tag", tag)
}

func (h *Hooks) TagsReplaced(e tagcache.TagEntry, removed int) {
	if h.l == nil {
		return
	}
	h.l.Debug("tagcache.tags_replaced",
		"kind", e.Kind.String(),
		"key", h.redact(e.Key),
		"removed", removed)
}

func (h *Hooks) ScanDegraded(pattern, reason string) {
	if h.l == nil {
		return
	}
	h.l.Warn("tagcache.scan_degraded",
		"pattern", pattern,
		"reason", reason)
}

func (h *Hooks) LocalSetRejected(key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("tagcache.local_set_rejected",
		"key", h.redact(key))
}
