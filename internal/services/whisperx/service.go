package whisperx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"talkscout/internal/fileutil"
	langpkg "talkscout/internal/language"
)

// CommandRunner executes an external command. Tests substitute fakes.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Service provides audio extraction and WhisperX transcription.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	mp3           MP3Options
	commandRunner CommandRunner
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, ffmpegBinary string, mp3 MP3Options) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Service{
		cfg:          cfg,
		ffmpegBinary: ffmpegBinary,
		mp3:          mp3.withDefaults(),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner CommandRunner) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// ExtractMP3 writes the MP3 listening copy of source to dest.
func (s *Service) ExtractMP3(ctx context.Context, source, dest string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, s.ffmpegBinary, buildMP3Args(source, dest, s.mp3)...)
	}
	return ExtractMP3(ctx, s.ffmpegBinary, source, dest, s.mp3)
}

// ExtractWAV writes the 16kHz mono WAV used for transcription.
func (s *Service) ExtractWAV(ctx context.Context, source, dest string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, s.ffmpegBinary, buildWAVArgs(source, dest)...)
	}
	return ExtractWAV(ctx, s.ffmpegBinary, source, dest)
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load to weights_only=true, which breaks
	// WhisperX/pyannote checkpoints.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// TranscribeResult contains the result of a transcription.
type TranscribeResult struct {
	// Text is the plain text transcription.
	Text string
	// Language is the language WhisperX used or detected.
	Language string
	// Segments are the timed segments from the JSON output.
	Segments []Segment
	// JSONPath is the path to the WhisperX JSON output.
	JSONPath string
}

// TranscribeFile transcribes an audio file. The source should be a WAV file
// from ExtractWAV; outputDir receives WhisperX's JSON output. An empty
// language falls back to the configured language, then to auto-detection.
func (s *Service) TranscribeFile(ctx context.Context, source, outputDir, language string) (TranscribeResult, error) {
	var result TranscribeResult

	if source == "" {
		return result, errors.New("transcribe: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}
	if strings.TrimSpace(language) == "" {
		language = s.cfg.Language
	}

	if err := s.run(ctx, UVXCommand, s.buildArgs(source, outputDir, language)...); err != nil {
		return result, fmt.Errorf("whisperx: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	result.JSONPath = filepath.Join(outputDir, baseName+".json")

	payload, err := loadPayload(result.JSONPath)
	if err != nil {
		return result, fmt.Errorf("whisperx: %w", err)
	}
	result.Segments = payload.Segments
	result.Language = payload.Language
	result.Text = joinSegments(payload.Segments)
	return result, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir, language string) []string {
	args := make([]string, 0, 32)

	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--beam_size", BeamSize,
	)

	vadMethod := s.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}

	if lang := langpkg.ToISO2(language); lang != "" {
		args = append(args, "--language", lang)
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}

// Word represents a single word with timing from WhisperX output.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

// whisperXPayload is the JSON structure from WhisperX output.
type whisperXPayload struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language,omitempty"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	payload, err := loadPayload(jsonPath)
	if err != nil {
		return nil, err
	}
	return payload.Segments, nil
}

func loadPayload(jsonPath string) (whisperXPayload, error) {
	var payload whisperXPayload
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return payload, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload, nil
}

func joinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// DetailedPath returns the detailed transcript location for a text
// transcript path: "talk.txt" becomes "talk.detailed.json".
func DetailedPath(txtPath string) string {
	return strings.TrimSuffix(txtPath, filepath.Ext(txtPath)) + ".detailed.json"
}

// WriteTranscript writes the plain text transcript to txtPath and the timed
// transcript next to it (see DetailedPath). The WhisperX JSON is copied
// verbatim when available; otherwise the segments are serialized. It returns
// the detailed transcript path.
func WriteTranscript(result TranscribeResult, txtPath string) (string, error) {
	if err := fileutil.WriteFileAtomic(txtPath, []byte(result.Text), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}

	detailedPath := DetailedPath(txtPath)
	if result.JSONPath != "" {
		if raw, err := os.ReadFile(result.JSONPath); err == nil {
			var indented bytes.Buffer
			if json.Indent(&indented, raw, "", "  ") == nil {
				raw = indented.Bytes()
			}
			if err := fileutil.WriteFileAtomic(detailedPath, raw, 0o644); err != nil {
				return "", fmt.Errorf("write detailed transcript: %w", err)
			}
			return detailedPath, nil
		}
	}

	payload := struct {
		Text     string    `json:"text"`
		Language string    `json:"language,omitempty"`
		Segments []Segment `json:"segments"`
	}{Text: result.Text, Language: result.Language, Segments: result.Segments}
	if payload.Segments == nil {
		payload.Segments = []Segment{}
	}
	err := fileutil.WriteAtomic(detailedPath, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	})
	if err != nil {
		return "", fmt.Errorf("write detailed transcript: %w", err)
	}
	return detailedPath, nil
}
