// Package search implements directory-search state: a materialized
// snapshot of entries captured once at search-open and never refreshed
// (spec §4.6, invariant S1), behind one {open, next, close} capability
// shared by real-directory searches and virtual searches (the share list).
package search

import (
	"errors"

	"github.com/google/uuid"

	"github.com/hgfsd/hgfsd/internal/hostfs"
	"github.com/hgfsd/hgfsd/internal/wire"
)

// ErrInvalidHandle is returned for a search handle that is Unused or whose
// generation does not match.
var ErrInvalidHandle = errors.New("search: invalid handle")

// Kind distinguishes what a search enumerates. Dir and Base both walk a
// real host directory and are handled identically (no synthetic "." or
// ".." entries are added for either); Other drives a virtual, injectable
// source such as the registry's share list.
type Kind int

const (
	KindDir Kind = iota
	KindBase
	KindOther
)

// Source is the injectable producer behind a search: Init yields a finite
// sequence of directory entries, materialized once at Open time, and
// Cleanup releases whatever Init acquired.
type Source interface {
	// Init returns the full, finite sequence of entries. Called exactly
	// once per search-open.
	Init() ([]wire.DirEntry, error)
	// Cleanup releases any resource Init acquired. Called exactly once per
	// search-close.
	Cleanup()
}

// dirSource implements Source over a real host directory via a single
// readdir pass.
type dirSource struct {
	fs   hostfs.FS
	path string
}

func (d *dirSource) Init() ([]wire.DirEntry, error) {
	names, err := d.fs.ReadDirNames(d.path)
	if err != nil {
		return nil, err
	}
	entries := make([]wire.DirEntry, 0, len(names))
	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		info, err := d.fs.Lstat(d.path + "/" + name)
		if err != nil {
			continue
		}
		typ := wire.FileTypeRegular
		switch {
		case info.IsDir:
			typ = wire.FileTypeDirectory
		case info.IsLink:
			typ = wire.FileTypeSymlink
		}
		entries = append(entries, wire.DirEntry{Type: typ, Name: []byte(name)})
	}
	return entries, nil
}

func (d *dirSource) Cleanup() {}

// NewDirSource builds a Source over a real host directory, preserving host
// readdir order (spec §4.6: "no re-sorting").
func NewDirSource(fs hostfs.FS, path string) Source {
	return &dirSource{fs: fs, path: path}
}

// SliceSource implements Source over a pre-built, finite slice — used for
// virtual searches such as enumerating the share list.
type SliceSource struct {
	Entries []wire.DirEntry
}

func (s *SliceSource) Init() ([]wire.DirEntry, error) { return s.Entries, nil }
func (s *SliceSource) Cleanup()                       {}

// Search is one open search-state slot: a fixed snapshot plus the kind of
// source it came from.
type Search struct {
	state      searchState
	generation uint32
	kind       Kind
	entries    []wire.DirEntry
	source     Source
	// snapshotID stamps this particular materialization, distinct from the
	// handle's own generation counter, so log lines from search-open and
	// every later search-read can be correlated even across a handle reuse.
	snapshotID string
}

type searchState int

const (
	searchUnused searchState = iota
	searchOpen
)

// Handle is the opaque 32-bit token for a search slot (mirrors
// handletable.Handle's index+generation layout).
type Handle uint32

const (
	handleIndexBits = 24
	handleIndexMask = (1 << handleIndexBits) - 1
)

func makeHandle(index int, generation uint32) Handle {
	return Handle(uint32(index)&handleIndexMask | (generation << handleIndexBits))
}

func (h Handle) index() int         { return int(uint32(h) & handleIndexMask) }
func (h Handle) generation() uint32 { return uint32(h) >> handleIndexBits }

// Table is the per-session array of search slots.
type Table struct {
	slots    []Search
	freeHead []int
}

// New creates an empty search table.
func New() *Table {
	return &Table{}
}

// Open captures src's entries into a fixed snapshot and allocates a
// handle for it.
func (t *Table) Open(kind Kind, src Source) (Handle, error) {
	entries, err := src.Init()
	if err != nil {
		return 0, err
	}

	var idx int
	if n := len(t.freeHead); n > 0 {
		idx = t.freeHead[n-1]
		t.freeHead = t.freeHead[:n-1]
	} else {
		idx = len(t.slots)
		t.slots = append(t.slots, Search{})
	}

	gen := (t.slots[idx].generation + 1) & (1<<(32-handleIndexBits) - 1)
	if gen == 0 {
		gen = 1
	}
	t.slots[idx] = Search{
		state:      searchOpen,
		generation: gen,
		kind:       kind,
		entries:    entries,
		source:     src,
		snapshotID: uuid.New().String(),
	}
	return makeHandle(idx, gen), nil
}

// SnapshotID returns the correlation ID stamped on h's directory snapshot
// at search-open, or "" if h is not currently open.
func (t *Table) SnapshotID(h Handle) string {
	slot, err := t.lookup(h)
	if err != nil {
		return ""
	}
	return slot.snapshotID
}

// lookup validates a handle and returns the slot.
func (t *Table) lookup(h Handle) (*Search, error) {
	idx := h.index()
	if idx < 0 || idx >= len(t.slots) {
		return nil, ErrInvalidHandle
	}
	slot := &t.slots[idx]
	if slot.state == searchUnused || slot.generation != h.generation() {
		return nil, ErrInvalidHandle
	}
	return slot, nil
}

// Read returns entry index i from the snapshot if in range, or reports
// end-of-directory. The same index always yields the same entry for the
// lifetime of the search (invariant S1): the snapshot is never refreshed.
func (t *Table) Read(h Handle, index uint32) (wire.DirEntry, bool, error) {
	slot, err := t.lookup(h)
	if err != nil {
		return wire.DirEntry{}, false, err
	}
	if int(index) >= len(slot.entries) {
		return wire.DirEntry{}, true, nil
	}
	return slot.entries[index], false, nil
}

// Close releases a search handle, invoking its Source's Cleanup.
func (t *Table) Close(h Handle) error {
	slot, err := t.lookup(h)
	if err != nil {
		return err
	}
	if slot.source != nil {
		slot.source.Cleanup()
	}
	slot.state = searchUnused
	slot.entries = nil
	slot.source = nil
	t.freeHead = append(t.freeHead, h.index())
	return nil
}
