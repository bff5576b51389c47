package dispatch

import (
	"time"

	"github.com/hgfsd/hgfsd/internal/wire"
)

// Metrics observes dispatcher behavior: per-operation outcome and latency,
// and the open-file cache's hit rate and eviction pressure. Implementations
// are optional — a nil sink (the Dispatcher's default) costs nothing,
// since every call site goes through the nil-checked helpers on Dispatcher.
type Metrics interface {
	// RecordOperation is called once per Dispatch call with the decoded
	// Operation, the status the reply carried, and how long the call took.
	RecordOperation(op wire.Operation, status wire.Status, duration time.Duration)

	// RecordCacheHit counts a FileNode found already open in the cache.
	RecordCacheHit()

	// RecordCacheMiss counts a FileNode that required a transparent
	// re-open because its descriptor had been evicted.
	RecordCacheMiss()

	// RecordEviction counts a cached FileNode being closed to make room
	// for another under MaxCachedOpenNodes.
	RecordEviction()
}
