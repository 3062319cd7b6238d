package metrics

import (
	"log/slog"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// Metrics defines the interface for collecting and reporting synchronization statistics.
type Metrics interface {
	AddEntriesScanned(n int64)
	AddFilesCreated(n int64)
	AddFilesUpdated(n int64)
	AddFilesDeleted(n int64)
	AddFilesSkipped(n int64)
	AddHashSkips(n int64)
	AddDirsPruned(n int64)
	AddRetries(n int64)
	AddBytesWritten(n int64)
	AddFailures(n int64)
	Log(log *slog.Logger)
}

// SyncMetrics holds the atomic counters for tracking a sync pass.
// It is the concrete implementation of the Metrics interface.
type SyncMetrics struct {
	EntriesScanned atomic.Int64
	FilesCreated   atomic.Int64
	FilesUpdated   atomic.Int64
	FilesDeleted   atomic.Int64
	FilesSkipped   atomic.Int64
	HashSkips      atomic.Int64
	DirsPruned     atomic.Int64
	Retries        atomic.Int64
	BytesWritten   atomic.Int64
	Failures       atomic.Int64
}

func (m *SyncMetrics) AddEntriesScanned(n int64) { m.EntriesScanned.Add(n) }
func (m *SyncMetrics) AddFilesCreated(n int64)   { m.FilesCreated.Add(n) }
func (m *SyncMetrics) AddFilesUpdated(n int64)   { m.FilesUpdated.Add(n) }
func (m *SyncMetrics) AddFilesDeleted(n int64)   { m.FilesDeleted.Add(n) }
func (m *SyncMetrics) AddFilesSkipped(n int64)   { m.FilesSkipped.Add(n) }
func (m *SyncMetrics) AddHashSkips(n int64)      { m.HashSkips.Add(n) }
func (m *SyncMetrics) AddDirsPruned(n int64)     { m.DirsPruned.Add(n) }
func (m *SyncMetrics) AddRetries(n int64)        { m.Retries.Add(n) }
func (m *SyncMetrics) AddBytesWritten(n int64)   { m.BytesWritten.Add(n) }
func (m *SyncMetrics) AddFailures(n int64)       { m.Failures.Add(n) }

// Log prints a summary of the sync pass.
func (m *SyncMetrics) Log(log *slog.Logger) {
	log.Info("SUM",
		"entriesScanned", m.EntriesScanned.Load(),
		"filesCreated", m.FilesCreated.Load(),
		"filesUpdated", m.FilesUpdated.Load(),
		"filesDeleted", m.FilesDeleted.Load(),
		"filesSkipped", m.FilesSkipped.Load(),
		"hashSkips", m.HashSkips.Load(),
		"dirsPruned", m.DirsPruned.Load(),
		"retries", m.Retries.Load(),
		"failures", m.Failures.Load(),
		"bytesWritten", humanize.Bytes(uint64(m.BytesWritten.Load())),
	)
}

// NoopMetrics is an implementation of the Metrics interface that performs no operations.
// It can be used to disable metrics collection without changing the calling code.
type NoopMetrics struct{}

func (m *NoopMetrics) AddEntriesScanned(n int64) {}
func (m *NoopMetrics) AddFilesCreated(n int64)   {}
func (m *NoopMetrics) AddFilesUpdated(n int64)   {}
func (m *NoopMetrics) AddFilesDeleted(n int64)   {}
func (m *NoopMetrics) AddFilesSkipped(n int64)   {}
func (m *NoopMetrics) AddHashSkips(n int64)      {}
func (m *NoopMetrics) AddDirsPruned(n int64)     {}
func (m *NoopMetrics) AddRetries(n int64)        {}
func (m *NoopMetrics) AddBytesWritten(n int64)   {}
func (m *NoopMetrics) AddFailures(n int64)       {}
func (m *NoopMetrics) Log(log *slog.Logger)      {}

// Statically assert that our types implement the interface.
var _ Metrics = (*SyncMetrics)(nil)
var _ Metrics = (*NoopMetrics)(nil)
