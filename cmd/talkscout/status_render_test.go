package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"talkscout/internal/config"
	"talkscout/internal/deps"
	"talkscout/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Output", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Output:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("yt-dlp", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "yt-dlp", Available: false},
		{Name: "FFmpeg", Available: true, Path: "/usr/bin/ffmpeg"},
		{Name: "uvx", Available: false, Optional: true, Detail: `binary "uvx" not found`},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[ERROR] not available") {
		t.Fatalf("expected error detail in first line, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[OK] Ready (command: /usr/bin/ffmpeg)") {
		t.Fatalf("expected ready detail in second line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[WARN]") || !strings.Contains(lines[2], "(optional)") {
		t.Fatalf("expected optional warning in third line, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "Missing dependencies:") || !strings.Contains(lines[3], "yt-dlp, uvx") {
		t.Fatalf("expected missing dependencies summary, got %q", lines[3])
	}
}

func TestDirectoryLines(t *testing.T) {
	lines := directoryLines([]preflight.Result{
		{Name: "Output", Passed: true, Detail: "/tmp/out (read/write ok)"},
		{Name: "State", Detail: "/tmp/state (error: does not exist)"},
	}, false)
	if !strings.Contains(lines[0], "[OK]") || !strings.Contains(lines[1], "[ERROR]") {
		t.Fatalf("unexpected directory lines: %q", lines)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestTranscriptionLine(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Transcription
		want []string
	}{
		{"disabled", config.Transcription{}, []string{"[INFO] disabled"}},
		{"auto", config.Transcription{Enabled: true, Model: "base"}, []string{"[INFO]", "auto-detected"}},
		{"named", config.Transcription{Enabled: true, Model: "base", Language: "de"}, []string{"[OK]", "German"}},
		{"unsupported", config.Transcription{Enabled: true, Model: "base", Language: "Klingon"}, []string{"[WARN]", "not supported"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transcriptionLine(tt.cfg, false)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Fatalf("transcriptionLine = %q, want %q", got, want)
				}
			}
		})
	}
}
