package whisperx

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const sampleJSON = `{"segments":[{"text":" Hello there. ","start":0.0,"end":1.5},{"text":"My thesis is about bees.","start":1.5,"end":4.0}],"language":"en"}`

func argValue(args []string, flag string) (string, bool) {
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		return "", false
	}
	return args[idx+1], true
}

func TestBuildArgsCPU(t *testing.T) {
	svc := NewService(Config{Language: "English"}, "", MP3Options{})
	args := svc.buildArgs("/tmp/talk.wav", "/tmp/out", "English")

	if args[0] != "--index-url" || args[1] != PypiIndexURL {
		t.Fatalf("unexpected index args: %v", args[:2])
	}
	if !slices.Contains(args, "whisperx") || !slices.Contains(args, "/tmp/talk.wav") {
		t.Fatalf("missing whisperx invocation: %v", args)
	}
	checks := map[string]string{
		"--model":         DefaultModel,
		"--output_dir":    "/tmp/out",
		"--output_format": "json",
		"--vad_method":    VADMethodSilero,
		"--language":      "en",
		"--device":        CPUDevice,
		"--compute_type":  CPUComputeType,
	}
	for flag, want := range checks {
		got, ok := argValue(args, flag)
		if !ok || got != want {
			t.Errorf("%s = %q (present %v), want %q", flag, got, ok, want)
		}
	}
	if slices.Contains(args, "--hf_token") {
		t.Error("hf_token should not be passed for silero")
	}
}

func TestBuildArgsCUDAAndPyannote(t *testing.T) {
	svc := NewService(Config{
		Model:       "large-v3",
		CUDAEnabled: true,
		VADMethod:   VADMethodPyannote,
		HFToken:     "hf_secret",
	}, "", MP3Options{})
	args := svc.buildArgs("talk.wav", "out", "")

	if got, _ := argValue(args, "--index-url"); got != CUDAIndexURL {
		t.Errorf("index url = %q", got)
	}
	if got, _ := argValue(args, "--extra-index-url"); got != PypiIndexURL {
		t.Errorf("extra index url = %q", got)
	}
	if got, _ := argValue(args, "--model"); got != "large-v3" {
		t.Errorf("model = %q", got)
	}
	if got, _ := argValue(args, "--hf_token"); got != "hf_secret" {
		t.Errorf("hf_token = %q", got)
	}
	if got, _ := argValue(args, "--device"); got != CUDADevice {
		t.Errorf("device = %q", got)
	}
	if slices.Contains(args, "--compute_type") {
		t.Error("compute_type only applies to CPU")
	}
	if slices.Contains(args, "--language") {
		t.Error("empty language should let whisperx detect")
	}
}

func TestExtractArgs(t *testing.T) {
	mp3 := buildMP3Args("in.mp4", "out.mp3", MP3Options{})
	if got, _ := argValue(mp3, "-ab"); got != DefaultMP3Bitrate {
		t.Errorf("bitrate = %q", got)
	}
	if got, _ := argValue(mp3, "-ar"); got != "44100" {
		t.Errorf("sample rate = %q", got)
	}
	if got, _ := argValue(mp3, "-acodec"); got != "libmp3lame" {
		t.Errorf("codec = %q", got)
	}
	if mp3[len(mp3)-1] != "out.mp3" {
		t.Errorf("dest should be last: %v", mp3)
	}

	wav := buildWAVArgs("in.mp4", "out.wav")
	if got, _ := argValue(wav, "-ar"); got != "16000" {
		t.Errorf("wav sample rate = %q", got)
	}
	if got, _ := argValue(wav, "-ac"); got != "1" {
		t.Errorf("wav channels = %q", got)
	}
	if got, _ := argValue(wav, "-c:a"); got != "pcm_s16le" {
		t.Errorf("wav codec = %q", got)
	}
}

func TestServiceExtractUsesRunner(t *testing.T) {
	svc := NewService(Config{}, "/opt/ffmpeg", MP3Options{Bitrate: "128k", SampleRate: 22050})
	var calls [][]string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		calls = append(calls, append([]string{name}, args...))
		return nil
	})

	ctx := context.Background()
	if err := svc.ExtractMP3(ctx, "talk.mp4", "talk.mp3"); err != nil {
		t.Fatal(err)
	}
	if err := svc.ExtractWAV(ctx, "talk.mp4", "talk.wav"); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0][0] != "/opt/ffmpeg" {
		t.Errorf("binary = %q", calls[0][0])
	}
	if got, _ := argValue(calls[0], "-ab"); got != "128k" {
		t.Errorf("bitrate = %q", got)
	}
	if got, _ := argValue(calls[0], "-ar"); got != "22050" {
		t.Errorf("sample rate = %q", got)
	}
}

func TestTranscribeFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "work", "talk.wav")
	outDir := filepath.Join(dir, "whisperx")

	svc := NewService(Config{}, "", MP3Options{})
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		if name != UVXCommand {
			t.Errorf("command = %q", name)
		}
		if got, _ := argValue(args, "--language"); got != "de" {
			t.Errorf("language = %q", got)
		}
		out, _ := argValue(args, "--output_dir")
		return os.WriteFile(filepath.Join(out, "talk.json"), []byte(sampleJSON), 0o644)
	})

	result, err := svc.TranscribeFile(context.Background(), source, outDir, "German")
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if result.Text != "Hello there. My thesis is about bees." {
		t.Errorf("text = %q", result.Text)
	}
	if len(result.Segments) != 2 {
		t.Errorf("segments = %d", len(result.Segments))
	}
	if result.Language != "en" {
		t.Errorf("language = %q", result.Language)
	}
	if result.JSONPath != filepath.Join(outDir, "talk.json") {
		t.Errorf("json path = %q", result.JSONPath)
	}
}

func TestTranscribeFileRunnerError(t *testing.T) {
	svc := NewService(Config{}, "", MP3Options{})
	boom := errors.New("exit status 1")
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return boom })

	_, err := svc.TranscribeFile(context.Background(), filepath.Join(t.TempDir(), "a.wav"), "", "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected runner error, got %v", err)
	}
}

func TestTranscribeFileMissingOutput(t *testing.T) {
	svc := NewService(Config{}, "", MP3Options{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return nil })

	_, err := svc.TranscribeFile(context.Background(), filepath.Join(t.TempDir(), "a.wav"), "", "")
	if err == nil {
		t.Fatal("expected error when whisperx produced no json")
	}
}

func TestWriteTranscriptCopiesJSON(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "talk.json")
	if err := os.WriteFile(jsonPath, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	txtPath := filepath.Join(dir, "Talk.txt")

	detailed, err := WriteTranscript(TranscribeResult{Text: "Hello", JSONPath: jsonPath}, txtPath)
	if err != nil {
		t.Fatal(err)
	}
	if detailed != filepath.Join(dir, "Talk.detailed.json") {
		t.Fatalf("detailed path = %q", detailed)
	}
	text, _ := os.ReadFile(txtPath)
	if string(text) != "Hello" {
		t.Errorf("text = %q", text)
	}
	segments, err := LoadSegments(detailed)
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) != 2 || segments[1].End != 4.0 {
		t.Errorf("segments = %+v", segments)
	}
}

func TestWriteTranscriptSerializesSegments(t *testing.T) {
	txtPath := filepath.Join(t.TempDir(), "Talk.txt")
	result := TranscribeResult{
		Text:     "a < b",
		Language: "en",
		Segments: []Segment{{Text: "a < b", Start: 0, End: 1}},
	}
	detailed, err := WriteTranscript(result, txtPath)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(detailed)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "a < b") {
		t.Errorf("expected unescaped text, got %s", raw)
	}
	var decoded struct {
		Text     string    `json:"text"`
		Segments []Segment `json:"segments"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Text != "a < b" || len(decoded.Segments) != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestDetailedPath(t *testing.T) {
	if got := DetailedPath("/x/My Talk.txt"); got != "/x/My Talk.detailed.json" {
		t.Errorf("DetailedPath = %q", got)
	}
}
