package metrics

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncMetricsCounts(t *testing.T) {
	m := &SyncMetrics{}
	m.AddEntriesScanned(3)
	m.AddFilesCreated(2)
	m.AddFilesUpdated(1)
	m.AddBytesWritten(2048)
	m.AddRetries(1)

	assert.Equal(t, int64(3), m.EntriesScanned.Load())
	assert.Equal(t, int64(2), m.FilesCreated.Load())
	assert.Equal(t, int64(1), m.FilesUpdated.Load())
	assert.Equal(t, int64(2048), m.BytesWritten.Load())
	assert.Equal(t, int64(1), m.Retries.Load())
}

func TestSyncMetricsLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	m := &SyncMetrics{}
	m.AddFilesCreated(5)
	m.AddBytesWritten(1024)
	m.Log(log)

	out := buf.String()
	assert.Contains(t, out, "filesCreated=5")
	assert.Contains(t, out, "1.0 kB")
}

func TestNoopMetricsDiscardsEverything(t *testing.T) {
	var m Metrics = &NoopMetrics{}
	m.AddEntriesScanned(100)
	m.AddFailures(100)
	m.Log(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}
