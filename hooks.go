package tagcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A dead tag reference was dropped during a membership query or listing.
	DanglingTagEntry(tag string, entry TagEntry)

	// A tag set member could not be decoded and was removed.
	CorruptTagEntry(tag string)

	// A tagged write replaced the entry's previous tag set.
	// removed is the number of tags the entry was detached from.
	TagsReplaced(entry TagEntry, removed int)

	// A full-listing scan was unsupported by the store topology and
	// degraded to a cursor sweep.
	ScanDegraded(pattern, reason string)

	// The local near cache rejected a Set (backpressure/eviction).
	LocalSetRejected(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) DanglingTagEntry(string, TagEntry) {}
func (NopHooks) CorruptTagEntry(string)            {}
func (NopHooks) TagsReplaced(TagEntry, int)        {}
func (NopHooks) ScanDegraded(string, string)       {}
func (NopHooks) LocalSetRejected(string)           {}
