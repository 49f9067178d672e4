package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"talkscout/internal/services"
	"talkscout/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReadyEnvironment(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	results := RunAll(cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if err := Require(cfg); err != nil {
		t.Fatalf("Require: %v", err)
	}
}

func TestCheckDependencies_OptionalUVX(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithTranscription(false),
		testsupport.WithStubbedBinaries("yt-dlp", "ffmpeg"),
	)
	t.Setenv("PATH", filepath.Join(testsupport.BaseDir(cfg), "bin"))

	for _, r := range CheckDependencies(cfg) {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
		if r.Name == "uvx" && !strings.HasSuffix(r.Detail, "(optional)") {
			t.Errorf("uvx detail = %q", r.Detail)
		}
	}

	cfg.Transcription.Enabled = true
	failed := Failures(CheckDependencies(cfg))
	if len(failed) != 1 || failed[0].Name != "uvx" {
		t.Fatalf("failures = %+v", failed)
	}
}

func TestRequireReportsEveryFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "uvx"))
	t.Setenv("PATH", filepath.Join(testsupport.BaseDir(cfg), "bin"))

	err := Require(cfg)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	for _, want := range []string{"Output directory", "State directory", "yt-dlp"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
