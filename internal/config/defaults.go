package config

const (
	defaultConfigPath           = "~/.config/talkscout/config.toml"
	defaultOutputDir            = "~/talkscout/captures"
	defaultLogDir               = "~/.local/share/talkscout/logs"
	defaultStateDir             = "~/.local/share/talkscout"
	defaultListingQuery         = "3 minute thesis"
	defaultListingMaxResults    = 20
	defaultListingCSVPath       = "~/talkscout/3MTlist.csv"
	defaultYTDLPBinary          = "yt-dlp"
	defaultDownloadFormat       = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	defaultDownloadMergeFormat  = "mp4"
	defaultDownloadPlayerClient = "android"
	defaultDownloadUserAgent    = "Mozilla/5.0 (Linux; Android 11) AppleWebKit/537.36"
	defaultDownloadTimeout      = 1800
	defaultFFmpegBinary         = "ffmpeg"
	defaultAudioBitrate         = "192k"
	defaultAudioSampleRate      = 44100
	defaultTranscriptionModel   = "base"
	defaultVADMethod            = "silero"
	defaultCaptureWorkers       = 2
	defaultCaptureStartInterval = 2
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"

	maxListingResults = 500
	maxCaptureWorkers = 16
	maxStartInterval  = 3600
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Listing: Listing{
			Query:      defaultListingQuery,
			MaxResults: defaultListingMaxResults,
			CSVPath:    defaultListingCSVPath,
		},
		Download: Download{
			Binary:         defaultYTDLPBinary,
			Format:         defaultDownloadFormat,
			MergeFormat:    defaultDownloadMergeFormat,
			PlayerClient:   defaultDownloadPlayerClient,
			UserAgent:      defaultDownloadUserAgent,
			TimeoutSeconds: defaultDownloadTimeout,
		},
		Audio: Audio{
			FFmpegBinary: defaultFFmpegBinary,
			Bitrate:      defaultAudioBitrate,
			SampleRate:   defaultAudioSampleRate,
		},
		Transcription: Transcription{
			Enabled:   true,
			Model:     defaultTranscriptionModel,
			VADMethod: defaultVADMethod,
		},
		Capture: Capture{
			Workers:              defaultCaptureWorkers,
			StartIntervalSeconds: defaultCaptureStartInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
