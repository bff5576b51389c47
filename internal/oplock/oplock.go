// Package oplock reserves the data-model fields for opportunistic locking
// without implementing the grant/break protocol (spec §9: "interfaces
// only"). It exists so FileNode and the dispatcher have a stable place to
// read and write oplock state ahead of a future real implementation.
package oplock

// Kind enumerates the oplock levels a guest may request. None of these
// currently trigger a break notification to any other session; granting one
// is bookkeeping only.
type Kind uint8

const (
	KindNone Kind = iota
	KindExclusive
	KindBatch
	KindLevelII
)

// State is the reserved per-FileNode oplock state.
type State struct {
	Kind Kind
}

// Grant always succeeds and is always immediately revocable: this stub
// never refuses a request and never notifies any other holder, so callers
// must not rely on it for real concurrency control.
func Grant(kind Kind) State {
	return State{Kind: kind}
}
