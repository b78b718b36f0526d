package telemetry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soundprediction/dedupe/pkg/types"
)

func newTestHandler(t *testing.T) (*ParquetHandler, string) {
	t.Helper()
	dir := t.TempDir()
	h, err := NewParquetHandler(slog.NewTextHandler(os.Stderr, nil), dir)
	if err != nil {
		t.Fatalf("NewParquetHandler: %v", err)
	}
	return h, dir
}

func TestParquetHandler_BuffersOnlyErrors(t *testing.T) {
	h, _ := newTestHandler(t)
	log := slog.New(h)

	log.Info("not persisted")
	log.Warn("also not persisted")
	log.Error("persisted")

	h.mu.Lock()
	buffered := len(h.buffer)
	h.mu.Unlock()

	if buffered != 1 {
		t.Errorf("expected 1 buffered record, got %d", buffered)
	}
}

func TestParquetHandler_FlushWritesFile(t *testing.T) {
	h, dir := newTestHandler(t)
	log := slog.New(h)

	log.Error("merge failed", "keeper", "a-1", "duplicate", "b-2")

	if err := h.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 parquet file, got %d", len(entries))
	}
	if !strings.HasSuffix(entries[0].Name(), ".parquet") {
		t.Errorf("unexpected file name: %s", entries[0].Name())
	}

	h.mu.Lock()
	buffered := len(h.buffer)
	h.mu.Unlock()
	if buffered != 0 {
		t.Errorf("expected empty buffer after flush, got %d", buffered)
	}
}

func TestParquetHandler_FlushEmptyBufferWritesNothing(t *testing.T) {
	h, dir := newTestHandler(t)

	if err := h.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files, got %d", len(entries))
	}
}

func TestParquetHandler_ContextValues(t *testing.T) {
	h, _ := newTestHandler(t)

	ctx := context.WithValue(context.Background(), types.ContextKeyActor, "ops@example.com")
	ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "api")

	log := slog.New(h)
	log.ErrorContext(ctx, "backfill failed")

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buffer) != 1 {
		t.Fatalf("expected 1 buffered record, got %d", len(h.buffer))
	}
	rec := h.buffer[0]
	if rec.Actor != "ops@example.com" {
		t.Errorf("Actor = %q, want ops@example.com", rec.Actor)
	}
	if rec.RequestSource != "api" {
		t.Errorf("RequestSource = %q, want api", rec.RequestSource)
	}
}

func TestNewParquetHandler_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "telemetry")
	if _, err := NewParquetHandler(slog.NewTextHandler(os.Stderr, nil), dir); err != nil {
		t.Fatalf("NewParquetHandler: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected directory to exist: %v", err)
	}
}
