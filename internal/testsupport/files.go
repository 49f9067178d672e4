package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with header followed by filler bytes until the file
// is size bytes long, creating parent directories as needed. Captures on disk
// are sniffed by their leading bytes, so header is what makes the file pass
// as an MP4 or MP3; size only matters for non-empty checks.
func WriteFile(t testing.TB, path string, header []byte, size int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := append([]byte(nil), header...)
	if pad := size - len(data); pad > 0 {
		data = append(data, bytes.Repeat([]byte{0x42}, pad)...)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
