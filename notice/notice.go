package notice

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
)

// Notice is the interface for all validation notices
type Notice interface {
	Code() string
	Severity() SeverityLevel
	Context() map[string]interface{}
}

// BaseNotice provides common functionality for all notices
type BaseNotice struct {
	code     string
	severity SeverityLevel
	context  map[string]interface{}
}

// NewBaseNotice creates a new base notice
func NewBaseNotice(code string, severity SeverityLevel, context map[string]interface{}) *BaseNotice {
	return &BaseNotice{
		code:     code,
		severity: severity,
		context:  context,
	}
}

// Code returns the notice code
func (n *BaseNotice) Code() string {
	return n.code
}

// Severity returns the notice severity
func (n *BaseNotice) Severity() SeverityLevel {
	return n.severity
}

// Context returns the notice context
func (n *BaseNotice) Context() map[string]interface{} {
	return n.context
}

// GetCode generates a code from a notice type name
func GetCode(typeName string) string {
	// Convert from CamelCase to snake_case
	// Remove "Notice" suffix if present
	name := strings.TrimSuffix(typeName, "Notice")
	
	var result []rune
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result = append(result, '_')
		}
		result = append(result, r)
	}
	
	return strings.ToLower(string(result))
}

// noticeShardFlushThreshold is the per-shard local-buffer size at which a
// shard flushes into the shared notice slice. Flushing in batches instead of
// locking the whole container on every AddNotice call is what bounds
// contention when independent validators run concurrently under
// internalValidator.runValidatorsParallel's worker pool.
const noticeShardFlushThreshold = 1024

// noticeShard is one lane of the sharded append buffer. Each shard has its
// own mutex, so two goroutines writing to different shards never block each
// other; they only contend when assigned to the same shard.
type noticeShard struct {
	mu      sync.Mutex
	pending []Notice
}

// NoticeContainer holds all notices generated during validation. AddNotice
// assigns each call round-robin to one of a fixed set of shards (sized to the host's
// logical CPU count, matching the worker pool in §5 of the design) and
// appends there; a shard flushes its pending batch into the shared slice,
// under the container-wide mutex, once it reaches
// noticeShardFlushThreshold. This keeps the common case - many concurrent
// validators calling AddNotice - off the single container-wide lock almost
// all of the time.
type NoticeContainer struct {
	notices      []Notice
	noticeCounts map[string]int
	maxPerType   int
	mutex        sync.Mutex

	shards  []*noticeShard
	nextPut uint64
}

func newShards() []*noticeShard {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	shards := make([]*noticeShard, n)
	for i := range shards {
		shards[i] = &noticeShard{pending: make([]Notice, 0, noticeShardFlushThreshold)}
	}
	return shards
}

// NewNoticeContainer creates a new notice container
func NewNoticeContainer() *NoticeContainer {
	return &NoticeContainer{
		notices:      make([]Notice, 0),
		noticeCounts: make(map[string]int),
		maxPerType:   100000, // Default limit
		shards:       newShards(),
	}
}

// NewNoticeContainerWithLimit creates a new notice container with custom limits
func NewNoticeContainerWithLimit(maxPerType int) *NoticeContainer {
	return &NoticeContainer{
		notices:      make([]Notice, 0),
		noticeCounts: make(map[string]int),
		maxPerType:   maxPerType,
		shards:       newShards(),
	}
}

// AddNotice adds a notice to the container with optional limiting. The
// notice is appended to one shard's local buffer; once that shard accumulates
// noticeShardFlushThreshold notices it merges into the shared slice under
// the container mutex and the per-code limit is applied at merge time.
func (nc *NoticeContainer) AddNotice(notice Notice) {
	idx := atomic.AddUint64(&nc.nextPut, 1) % uint64(len(nc.shards))
	shard := nc.shards[idx]

	shard.mu.Lock()
	shard.pending = append(shard.pending, notice)
	full := len(shard.pending) >= noticeShardFlushThreshold
	var batch []Notice
	if full {
		batch = shard.pending
		shard.pending = make([]Notice, 0, noticeShardFlushThreshold)
	}
	shard.mu.Unlock()

	if full {
		nc.mergeBatch(batch)
	}
}

// mergeBatch appends a flushed shard batch into the shared slice under the
// container mutex, applying the per-code cap.
func (nc *NoticeContainer) mergeBatch(batch []Notice) {
	nc.mutex.Lock()
	defer nc.mutex.Unlock()
	for _, n := range batch {
		code := n.Code()
		if nc.maxPerType > 0 && nc.noticeCounts[code] >= nc.maxPerType {
			continue
		}
		nc.notices = append(nc.notices, n)
		nc.noticeCounts[code]++
	}
}

// FlushNotices merges every shard's pending notices into the shared slice
// regardless of whether it has hit noticeShardFlushThreshold. Every read
// method of the container (GetNotices, GetNoticesByCode, GetNoticesBySeverity,
// CountBySeverity, HasErrors) calls this first so a shard that hasn't filled
// up yet is still visible.
func (nc *NoticeContainer) FlushNotices() {
	for _, shard := range nc.shards {
		shard.mu.Lock()
		batch := shard.pending
		shard.pending = make([]Notice, 0, noticeShardFlushThreshold)
		shard.mu.Unlock()
		nc.mergeBatch(batch)
	}
}

// SetMaxNoticesPerType sets the maximum number of notices per type
func (nc *NoticeContainer) SetMaxNoticesPerType(max int) {
	nc.mutex.Lock()
	defer nc.mutex.Unlock()
	nc.maxPerType = max
}

// GetNotices returns all notices
func (nc *NoticeContainer) GetNotices() []Notice {
	nc.FlushNotices()
	nc.mutex.Lock()
	defer nc.mutex.Unlock()
	// Return a copy to avoid data races
	result := make([]Notice, len(nc.notices))
	copy(result, nc.notices)
	return result
}

// GetNoticesByCode returns notices filtered by code
func (nc *NoticeContainer) GetNoticesByCode(code string) []Notice {
	nc.FlushNotices()
	nc.mutex.Lock()
	defer nc.mutex.Unlock()
	var filtered []Notice
	for _, n := range nc.notices {
		if n.Code() == code {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

// GetNoticesBySeverity returns notices filtered by severity
func (nc *NoticeContainer) GetNoticesBySeverity(severity SeverityLevel) []Notice {
	nc.FlushNotices()
	nc.mutex.Lock()
	defer nc.mutex.Unlock()
	var filtered []Notice
	for _, n := range nc.notices {
		if n.Severity() == severity {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

// CountBySeverity returns the count of notices by severity level
func (nc *NoticeContainer) CountBySeverity() map[SeverityLevel]int {
	nc.FlushNotices()
	nc.mutex.Lock()
	defer nc.mutex.Unlock()
	counts := make(map[SeverityLevel]int)
	for _, n := range nc.notices {
		counts[n.Severity()]++
	}
	return counts
}

// HasErrors returns true if there are any ERROR level notices
func (nc *NoticeContainer) HasErrors() bool {
	nc.FlushNotices()
	nc.mutex.Lock()
	defer nc.mutex.Unlock()
	for _, n := range nc.notices {
		if n.Severity() == ERROR {
			return true
		}
	}
	return false
}

// String returns a string representation of the container
func (nc *NoticeContainer) String() string {
	counts := nc.CountBySeverity()
	return fmt.Sprintf("NoticeContainer{errors: %d, warnings: %d, infos: %d}",
		counts[ERROR], counts[WARNING], counts[INFO])
}