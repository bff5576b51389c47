// Package handletable implements the per-session FileNode array and its
// bounded open-file cache: a flat slot array with a free list and
// generation counters (spec §4.5), and an LRU list of cached-open nodes
// bounded by MaxCachedOpenNodes.
package handletable

import (
	"container/list"
	"errors"

	"github.com/hgfsd/hgfsd/internal/hostfs"
)

// ErrInvalidHandle is returned whenever a handle fails its generation or
// state check (spec invariant H4).
var ErrInvalidHandle = errors.New("handletable: invalid handle")

// State is a FileNode's lifecycle state (spec §3 FileNode).
type State int

const (
	StateUnused State = iota
	StateInUseCached
	StateInUseNotCached
)

// Flags captures the per-open behavior bits carried on a FileNode.
type Flags uint8

const (
	FlagAppend Flags = 1 << iota
	FlagSequential
	FlagSharedFolderOpen
)

// LocalID identifies a host file independent of path (volume-id, file-id
// pair), used to detect host-side identity across opens.
type LocalID struct {
	VolumeID uint64
	FileID   uint64
}

// FileNode is one slot in the session's file-node array.
type FileNode struct {
	state State

	// Path/identity.
	Path        string
	ShareName   string
	LocalID     LocalID
	AccessMode  uint32
	ShareAccess uint32
	OplockKind  uint8
	Flags       Flags

	// generation disambiguates stale handles referring to a reused slot.
	generation uint32

	fd       hostfs.File
	lruElem  *list.Element // non-nil iff state == StateInUseCached
	freeNext int           // -1 if not on the free list
}

const (
	initialCapacity = 16
	handleIndexBits = 24
	handleIndexMask = (1 << handleIndexBits) - 1
)

// Handle is the 32-bit opaque token returned to the dispatcher: low bits
// index the array slot, remaining bits are the generation counter (spec §3
// "Handle").
type Handle uint32

func makeHandle(index int, generation uint32) Handle {
	return Handle(uint32(index)&handleIndexMask | (generation << handleIndexBits))
}

func (h Handle) index() int         { return int(uint32(h) & handleIndexMask) }
func (h Handle) generation() uint32 { return uint32(h) >> handleIndexBits }

// Table is the per-session FileNode array plus its bounded open-file cache.
// Not safe for concurrent use by itself — callers (the session's
// NodeArrayLock) serialize access.
type Table struct {
	nodes        []FileNode
	freeHead     int // -1 if empty
	maxNodes     int
	maxCached    int
	cachedCount  int
	lockedCached int // cached nodes currently holding an oplock (never evicted)
	lru          *list.List // MRU at Back, LRU at Front
}

// New creates a Table that grows up to maxNodes slots and caches at most
// maxCached open descriptors at a time.
func New(maxNodes, maxCached int) *Table {
	t := &Table{
		freeHead:  -1,
		maxNodes:  maxNodes,
		maxCached: maxCached,
		lru:       list.New(),
	}
	t.grow(initialCapacity)
	return t
}

func (t *Table) grow(by int) bool {
	newLen := len(t.nodes) + by
	if newLen > t.maxNodes {
		newLen = t.maxNodes
	}
	if newLen <= len(t.nodes) {
		return false
	}
	for i := len(t.nodes); i < newLen; i++ {
		t.nodes = append(t.nodes, FileNode{state: StateUnused, freeNext: -1})
		t.pushFree(i)
	}
	return true
}

func (t *Table) pushFree(i int) {
	t.nodes[i].freeNext = t.freeHead
	t.freeHead = i
}

func (t *Table) popFree() (int, bool) {
	if t.freeHead == -1 {
		if !t.grow(len(t.nodes)) {
			return 0, false
		}
	}
	if t.freeHead == -1 {
		return 0, false
	}
	i := t.freeHead
	t.freeHead = t.nodes[i].freeNext
	t.nodes[i].freeNext = -1
	return i, true
}

// EvictFunc is called with the node about to be evicted from the cache so
// the caller can close its descriptor before the slot transitions to
// "has-name-but-no-fd".
type EvictFunc func(n *FileNode)

// Open allocates a slot, populates it as InUseCached (unless cached is
// false, e.g. for oplock-holding or in-flight nodes which start
// InUseNotCached), evicting the LRU cached node first if the cache is at
// capacity. onEvict is invoked for the evicted node, if any, before its
// descriptor is reused by the caller.
func (t *Table) Open(n FileNode, cached bool, onEvict EvictFunc) (Handle, error) {
	idx, ok := t.popFree()
	if !ok {
		return 0, errors.New("handletable: node array exhausted")
	}

	slot := &t.nodes[idx]
	gen := (slot.generation + 1) & (1<<(32-handleIndexBits) - 1)
	if gen == 0 {
		gen = 1
	}
	*slot = n
	slot.generation = gen
	slot.freeNext = -1

	if cached {
		if t.cachedCount >= t.maxCached {
			t.evictLRU(onEvict)
		}
		slot.state = StateInUseCached
		slot.lruElem = t.lru.PushBack(idx)
		t.cachedCount++
	} else {
		slot.state = StateInUseNotCached
	}

	return makeHandle(idx, gen), nil
}

// evictLRU closes and demotes the least-recently-used cached node.
func (t *Table) evictLRU(onEvict EvictFunc) {
	front := t.lru.Front()
	if front == nil {
		return
	}
	idx := front.Value.(int)
	slot := &t.nodes[idx]
	if onEvict != nil {
		onEvict(slot)
	}
	t.lru.Remove(front)
	slot.lruElem = nil
	slot.fd = nil
	slot.state = StateInUseNotCached // "has-name-but-no-fd" stub
	t.cachedCount--
}

// Lookup validates a handle and returns its node, rejecting generation
// mismatches and Unused slots with ErrInvalidHandle (spec invariant H4).
func (t *Table) Lookup(h Handle) (*FileNode, error) {
	idx := h.index()
	if idx < 0 || idx >= len(t.nodes) {
		return nil, ErrInvalidHandle
	}
	slot := &t.nodes[idx]
	if slot.state == StateUnused || slot.generation != h.generation() {
		return nil, ErrInvalidHandle
	}
	return slot, nil
}

// Touch moves a cached node to the MRU end on use; uncached nodes are left
// where they are (spec §4.5: "If it is uncached, leave it").
func (t *Table) Touch(h Handle) error {
	slot, err := t.Lookup(h)
	if err != nil {
		return err
	}
	if slot.state == StateInUseCached && slot.lruElem != nil {
		t.lru.MoveToBack(slot.lruElem)
	}
	return nil
}

// Promote moves an uncached node (after the dispatcher has transparently
// re-opened its descriptor) back onto the cached list, evicting the LRU
// entry first if needed.
func (t *Table) Promote(h Handle, fd hostfs.File, onEvict EvictFunc) error {
	slot, err := t.Lookup(h)
	if err != nil {
		return err
	}
	if slot.state == StateInUseCached {
		return nil
	}
	if t.cachedCount >= t.maxCached {
		t.evictLRU(onEvict)
	}
	slot.fd = fd
	slot.state = StateInUseCached
	slot.lruElem = t.lru.PushBack(h.index())
	t.cachedCount++
	return nil
}

// SetOplock marks a node as holding an oplock, removing it from the cached
// list so it is never chosen for eviction (spec §4.5: "Nodes holding an
// oplock are never placed on the cached list").
func (t *Table) SetOplock(h Handle, kind uint8) error {
	slot, err := t.Lookup(h)
	if err != nil {
		return err
	}
	slot.OplockKind = kind
	if slot.state == StateInUseCached && slot.lruElem != nil {
		t.lru.Remove(slot.lruElem)
		slot.lruElem = nil
		t.cachedCount--
		t.lockedCached++
		slot.state = StateInUseNotCached
	}
	return nil
}

// Close frees a handle's slot, pushing it back onto the free list; the
// slot's generation advances when Open next allocates it. Closing an already-Unused handle is
// InvalidHandle, not idempotent success (spec §4.5).
func (t *Table) Close(h Handle) (*FileNode, error) {
	slot, err := t.Lookup(h)
	if err != nil {
		return nil, err
	}
	if slot.state == StateInUseCached && slot.lruElem != nil {
		t.lru.Remove(slot.lruElem)
		slot.lruElem = nil
		t.cachedCount--
	}
	closed := *slot
	slot.state = StateUnused
	slot.fd = nil
	t.pushFree(h.index())
	return &closed, nil
}

// SetFD attaches an open descriptor to a node, used by the dispatcher right
// after a successful host-FS open or a transparent re-open.
func (n *FileNode) SetFD(fd hostfs.File) { n.fd = fd }

// FD returns the node's open descriptor, or nil if it is currently
// uncached ("has-name-but-no-fd").
func (n *FileNode) FD() hostfs.File { return n.fd }

// CachedCount reports the number of nodes currently on the cached list
// (invariant H2: never exceeds MaxCachedOpenNodes).
func (t *Table) CachedCount() int { return t.cachedCount }

// NumNodes reports the total slot count (invariant H1).
func (t *Table) NumNodes() int { return len(t.nodes) }

// ActiveHandles returns a valid Handle for every non-Unused slot, used by
// session shutdown to drain all still-open nodes without the caller having
// to reconstruct generation numbers itself.
func (t *Table) ActiveHandles() []Handle {
	handles := make([]Handle, 0, len(t.nodes))
	for i, n := range t.nodes {
		if n.state != StateUnused {
			handles = append(handles, makeHandle(i, n.generation))
		}
	}
	return handles
}
