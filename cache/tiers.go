package cache

import (
	"container/list"
	"reflect"
	"runtime"
	"sync"
	"weak"
)

// DefaultStrongCapacity is the default size of the strong memory tier.
const DefaultStrongCapacity = 8

// entryBox is the heap cell holding a tier entry's value. The strong
// tier owns boxes; the weak tier holds non-owning handles to them, so
// an entry evicted from the strong tier stays weakly reachable until
// the collector reclaims its box.
type entryBox struct {
	value any
}

// tierEntry is the strong tier's LRU list element payload.
type tierEntry struct {
	key string
	box *entryBox
}

// memoryTiers is the two-layer in-memory retention structure: a bounded
// strong-reference LRU plus an unbounded weak-reference table. It is an
// accelerator over the persistent store; its contents never decide
// correctness, only latency.
type memoryTiers struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // most recently used at front
	strong   map[string]*list.Element
	weak     map[string]weak.Pointer[entryBox]
	onEvict  func()
}

// newMemoryTiers creates the tier structure. capacity <= 0 selects
// DefaultStrongCapacity. onEvict, if non-nil, is invoked for every
// strong-tier eviction.
func newMemoryTiers(capacity int, onEvict func()) *memoryTiers {
	if capacity <= 0 {
		capacity = DefaultStrongCapacity
	}
	return &memoryTiers{
		capacity: capacity,
		order:    list.New(),
		strong:   make(map[string]*list.Element),
		weak:     make(map[string]weak.Pointer[entryBox]),
		onEvict:  onEvict,
	}
}

// add inserts value into both tiers. Single-pass values (iterators) are
// never retained; scalar values skip the weak tier.
func (t *memoryTiers) add(key string, value any) {
	if isSinglePass(value) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if el, ok := t.strong[key]; ok {
		el.Value.(*tierEntry).box.value = value
		t.order.MoveToFront(el)
		return
	}

	box := &entryBox{value: value}
	t.strong[key] = t.order.PushFront(&tierEntry{key: key, box: box})

	if weaklyReferenceable(value) {
		t.weak[key] = weak.Make(box)
		// Self-clean the weak slot once the collector reclaims the box.
		runtime.AddCleanup(box, t.reapWeak, key)
	}

	for t.order.Len() > t.capacity {
		t.evictOldest()
	}
}

// get returns the value for key and the tier that served it ("strong"
// or "weak"). A strong hit refreshes recency; a weak hit does not
// re-insert into the strong tier.
func (t *memoryTiers) get(key string) (any, string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if el, ok := t.strong[key]; ok {
		t.order.MoveToFront(el)
		return el.Value.(*tierEntry).box.value, "strong", true
	}

	if p, ok := t.weak[key]; ok {
		if box := p.Value(); box != nil {
			return box.value, "weak", true
		}
		delete(t.weak, key)
	}

	return nil, "", false
}

// contains reports residency in either tier without touching recency.
func (t *memoryTiers) contains(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.strong[key]; ok {
		return true
	}
	if p, ok := t.weak[key]; ok {
		if p.Value() != nil {
			return true
		}
		delete(t.weak, key)
	}
	return false
}

// remove drops key from both tiers.
func (t *memoryTiers) remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if el, ok := t.strong[key]; ok {
		t.order.Remove(el)
		delete(t.strong, key)
	}
	delete(t.weak, key)
}

// strongKeys returns the strong tier's resident keys, most recent first.
func (t *memoryTiers) strongKeys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := make([]string, 0, t.order.Len())
	for el := t.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*tierEntry).key)
	}
	return keys
}

// evictOldest removes the least-recently-used strong entry. Its weak
// slot stays; the box survives until the collector reclaims it.
// Caller must hold t.mu.
func (t *memoryTiers) evictOldest() {
	el := t.order.Back()
	if el == nil {
		return
	}
	t.order.Remove(el)
	delete(t.strong, el.Value.(*tierEntry).key)
	if t.onEvict != nil {
		t.onEvict()
	}
}

// reapWeak removes key's weak slot if its box has been reclaimed.
func (t *memoryTiers) reapWeak(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.weak[key]; ok && p.Value() == nil {
		delete(t.weak, key)
	}
}

// isSinglePass reports whether value is a stateful single-pass producer
// (an iterator). Such values are never retained in the memory tiers:
// storing one would also store its current position.
func isSinglePass(value any) bool {
	if value == nil {
		return false
	}
	if _, ok := value.(interface{ Next() (any, bool) }); ok {
		return true
	}
	return reflect.ValueOf(value).Kind() == reflect.Func
}

// weaklyReferenceable reports whether value can usefully be held by the
// non-owning tier. Scalar kinds are copied everywhere they flow, so a
// weak handle to them proves nothing; they rely on the strong tier or
// re-deserialization.
func weaklyReferenceable(value any) bool {
	if value == nil {
		return false
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128, reflect.String:
		return false
	}
	return true
}
