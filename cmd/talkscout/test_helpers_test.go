package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"talkscout/internal/config"
	"talkscout/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	binDir     string
}

// setupCLITestEnv writes a config file rooted in a temp directory with stub
// yt-dlp, ffmpeg, and uvx executables on PATH.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithTranscription(false), testsupport.WithStubbedBinaries())
	base := testsupport.BaseDir(cfg)
	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "config.toml"),
		baseDir:    base,
		binDir:     filepath.Join(base, "bin"),
	}
	env.writeConfig(t)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
state_dir = %q

[listing]
csv_path = %q

[download]
binary = %q

[audio]
ffmpeg_binary = %q

[transcription]
enabled = %t

[capture]
workers = 1
start_interval_seconds = 0
`,
		e.cfg.Paths.OutputDir,
		e.cfg.Paths.LogDir,
		e.cfg.Paths.StateDir,
		e.cfg.Listing.CSVPath,
		e.cfg.Download.Binary,
		e.cfg.Audio.FFmpegBinary,
		e.cfg.Transcription.Enabled,
	)
	if err := os.WriteFile(e.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// stubYTDLP replaces the yt-dlp stub with a script that prints output.
func (e *cliTestEnv) stubYTDLP(t *testing.T, output string) {
	t.Helper()
	script := "#!/bin/sh\ncat <<'JSON'\n" + output + "\nJSON\n"
	if err := os.WriteFile(filepath.Join(e.binDir, "yt-dlp"), []byte(script), 0o755); err != nil {
		t.Fatalf("write yt-dlp stub: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput: %s", needle, haystack)
	}
}
