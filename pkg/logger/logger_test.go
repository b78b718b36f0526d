package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestColorHandler_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Level
		message   string
		wantColor string
	}{
		{"error is red", slog.LevelError, "something failed", colorRed},
		{"warn is yellow", slog.LevelWarn, "watch out", colorYellow},
		{"info is plain", slog.LevelInfo, "just a note", ""},
		{"persist message is green", slog.LevelInfo, "Persisting merged entity", colorGreen},
		{"merge message is green", slog.LevelInfo, "Merged duplicate into keeper", colorGreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(NewColorHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			log.Log(context.Background(), tt.level, tt.message)

			out := buf.String()
			if !strings.Contains(out, tt.message) {
				t.Fatalf("output missing message: %s", out)
			}
			if tt.wantColor == "" {
				if strings.Contains(out, colorRed) || strings.Contains(out, colorYellow) || strings.Contains(out, colorGreen) {
					t.Errorf("expected no color codes, got: %q", out)
				}
				return
			}
			if !strings.Contains(out, tt.wantColor) {
				t.Errorf("expected color %q in output: %q", tt.wantColor, out)
			}
		})
	}
}

func TestColorHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("filtered out")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "filtered out") {
		t.Error("info message should have been filtered")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn message should have been kept")
	}
}

func TestColorHandler_Attrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, nil))

	log.With("group_id", "default").Info("scan complete", "checked", 10)

	out := buf.String()
	if !strings.Contains(out, "group_id=default") {
		t.Errorf("output missing persistent attr: %q", out)
	}
	if !strings.Contains(out, "checked=10") {
		t.Errorf("output missing record attr: %q", out)
	}
}

func TestColorHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, nil)).WithGroup("merge")

	log.Info("done", "count", 3)

	if !strings.Contains(buf.String(), "merge.count=3") {
		t.Errorf("output missing grouped attr: %q", buf.String())
	}
}
