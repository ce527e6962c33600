package phash

import "sync"

// Entry is a fingerprint registered in an Index along with the image it
// represents.
type Entry struct {
	Fingerprint Fingerprint
	Ref         string
}

// Index holds the fingerprints accepted so far for one role. It is created
// empty per role batch and discarded afterwards; indexes are never shared
// across roles. It is safe for concurrent use.
type Index struct {
	threshold float64

	mu      sync.Mutex
	entries []Entry
}

// NewIndex returns an empty index. A threshold outside (0,1] falls back to
// DefaultThreshold.
func NewIndex(threshold float64) *Index {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Index{threshold: threshold}
}

// Threshold returns the duplicate threshold in use.
func (x *Index) Threshold() float64 { return x.threshold }

// CheckAndRegister reports whether fp is a near-duplicate of a registered
// fingerprint. If it is not, fp is registered under ref. The comparison and
// the registration happen under one lock, so two concurrent callers can never
// both register near-duplicates of each other.
//
// When fp duplicates an existing entry, that entry's ref is returned.
func (x *Index) CheckAndRegister(fp Fingerprint, ref string) (duplicate bool, of string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, e := range x.entries {
		if Similarity(fp, e.Fingerprint) >= x.threshold {
			return true, e.Ref
		}
	}
	x.entries = append(x.entries, Entry{Fingerprint: fp, Ref: ref})
	return false, ""
}

// Len returns the number of registered fingerprints.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.entries)
}

// Entries returns a snapshot of the registered fingerprints in
// registration order.
func (x *Index) Entries() []Entry {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]Entry(nil), x.entries...)
}
