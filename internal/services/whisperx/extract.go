package whisperx

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// MP3Options controls the listening copy produced by ExtractMP3.
type MP3Options struct {
	Bitrate    string
	SampleRate int
}

func (o MP3Options) withDefaults() MP3Options {
	if strings.TrimSpace(o.Bitrate) == "" {
		o.Bitrate = DefaultMP3Bitrate
	}
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultMP3SampleRate
	}
	return o
}

// ExtractMP3 writes the audio track of source to dest as MP3.
func ExtractMP3(ctx context.Context, ffmpegBinary, source, dest string, opts MP3Options) error {
	return runFFmpeg(ctx, ffmpegBinary, "ffmpeg extract mp3", buildMP3Args(source, dest, opts))
}

// ExtractWAV writes the audio track of source to dest as mono 16kHz PCM
// suitable for WhisperX.
func ExtractWAV(ctx context.Context, ffmpegBinary, source, dest string) error {
	return runFFmpeg(ctx, ffmpegBinary, "ffmpeg extract wav", buildWAVArgs(source, dest))
}

func buildMP3Args(source, dest string, opts MP3Options) []string {
	opts = opts.withDefaults()
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-acodec", "libmp3lame",
		"-ab", opts.Bitrate,
		"-ar", strconv.Itoa(opts.SampleRate),
		"-y",
		dest,
	}
}

func buildWAVArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", strconv.Itoa(WhisperSampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
}

func runFFmpeg(ctx context.Context, ffmpegBinary, op string, args []string) error {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", op, err, strings.TrimSpace(string(output)))
	}
	return nil
}
