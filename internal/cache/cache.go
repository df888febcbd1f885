// Package cache provides the in-memory integrity cache for resolved
// messages. Every entry carries a sha256 checksum over its content, so
// out-of-band corruption is detected on read instead of being served.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"lingo/internal/diag"
)

const (
	DefaultMaxEntries = 1024

	// fixed bookkeeping cost added to each serialized error when
	// computing an entry's error weight
	errorOverhead = 16
)

// ErrIntegrity is returned (wrapped) by Get in strict mode when an
// entry fails checksum verification.
var ErrIntegrity = fmt.Errorf("cache: entry failed integrity check")

// ErrWriteConflict is returned by Put in write-once mode when the key
// already holds a live entry.
var ErrWriteConflict = fmt.Errorf("cache: entry already exists")

// Options configures one cache. Policies are independent: any
// combination is valid.
type Options struct {
	// MaxEntries caps the entry count; LRU eviction past it.
	// 0 means DefaultMaxEntries.
	MaxEntries int
	// MaxErrors skips caching results whose error collection exceeds
	// this count. 0 disables the policy.
	MaxErrors int
	// MaxErrorWeight skips caching when the summed error weight
	// (overhead plus serialized length per error) exceeds this.
	// 0 disables the policy.
	MaxErrorWeight int
	// WriteOnce makes rewriting a live key a conflict error instead of
	// an overwrite.
	WriteOnce bool
	// Strict turns a checksum mismatch on read into an error instead
	// of a silent evict-and-miss.
	Strict bool
}

// Entry is one cached resolution result.
type Entry struct {
	Formatted string
	Errors    []diag.Diagnostic
	Seq       uint64

	sum [sha256.Size]byte
}

// Verify recomputes the checksum over the entry's current content and
// compares it with the one stored at Put time.
func (e *Entry) Verify() bool {
	return checksum(e.Formatted, e.Errors, e.Seq) == e.sum
}

// Stats are monotonic counters plus the live entry count.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	opts    Options
	entries map[string]*list.Element
	lru     *list.List // front = most recent; values are *lruItem
	seq     uint64
	hits    uint64
	misses  uint64
}

type lruItem struct {
	key   string
	entry *Entry
}

func New(opts Options) *Cache {
	if opts.MaxEntries == 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	return &Cache{
		opts:    opts,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get returns the live entry for key. A verification failure is a miss
// plus eviction normally; in strict mode it returns ErrIntegrity and
// keeps the entry in place for inspection.
func (c *Cache) Get(key string) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, nil
	}
	entry := el.Value.(*lruItem).entry
	if !entry.Verify() {
		if c.opts.Strict {
			return nil, fmt.Errorf("%w: key %q", ErrIntegrity, key)
		}
		c.remove(el)
		c.misses++
		return nil, nil
	}
	c.lru.MoveToFront(el)
	c.hits++
	return entry, nil
}

// Put stores a resolution result. A nil entry with nil error means the
// skip policies rejected it; the caller just doesn't cache.
func (c *Cache) Put(key, formatted string, errs []diag.Diagnostic) (*Entry, error) {
	if skip := c.skipErrors(errs); skip {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, exists := c.entries[key]; exists {
		if c.opts.WriteOnce {
			return nil, fmt.Errorf("%w: key %q", ErrWriteConflict, key)
		}
		c.remove(el)
	}

	c.seq++
	entry := &Entry{
		Formatted: formatted,
		Errors:    errs,
		Seq:       c.seq,
	}
	entry.sum = checksum(formatted, errs, entry.Seq)

	c.entries[key] = c.lru.PushFront(&lruItem{key: key, entry: entry})
	for c.lru.Len() > c.opts.MaxEntries {
		c.remove(c.lru.Back())
	}
	return entry, nil
}

// Invalidate drops every entry. Counters survive; the sequence keeps
// climbing so stale entries can never alias fresh ones.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: c.lru.Len()}
}

func (c *Cache) remove(el *list.Element) {
	item := el.Value.(*lruItem)
	delete(c.entries, item.key)
	c.lru.Remove(el)
}

// skipErrors applies the error-count and error-weight policies.
func (c *Cache) skipErrors(errs []diag.Diagnostic) bool {
	if c.opts.MaxErrors > 0 && len(errs) > c.opts.MaxErrors {
		return true
	}
	if c.opts.MaxErrorWeight > 0 {
		weight := 0
		for i := range errs {
			weight += errorOverhead + len(serializeError(&errs[i]))
			if weight > c.opts.MaxErrorWeight {
				return true
			}
		}
	}
	return false
}

// checksum covers formatted content, every serialized error, and the
// sequence number.
func checksum(formatted string, errs []diag.Diagnostic, seq uint64) [sha256.Size]byte {
	h := sha256.New()
	h.Write([]byte(formatted))
	for i := range errs {
		h.Write(serializeError(&errs[i]))
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seq)
	h.Write(buf[:])

	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// serializeError prefers the msgpack form; when a diagnostic cannot be
// serialized the string form is hashed instead, so verification
// degrades instead of failing.
func serializeError(d *diag.Diagnostic) []byte {
	raw, err := msgpack.Marshal(d)
	if err != nil {
		return []byte(d.Message + d.Code.ID())
	}
	return raw
}
