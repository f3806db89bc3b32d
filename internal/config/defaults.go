package config

const (
	defaultConfigPath       = "~/.config/mkvsubs/config.toml"
	projectConfigFile       = "mkvsubs.toml"
	defaultOutputDir        = "~/.local/share/mkvsubs/output"
	defaultLogDir           = "~/.local/share/mkvsubs/logs"
	defaultMediaDir         = "~/Videos"
	defaultSearchDepth      = 2
	maxSearchDepth          = 8
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultCommandTimeout   = 300
	defaultMaxOutputBytes   = 10 * 1024 * 1024
	defaultMaxFileBytes     = 64 * 1024 * 1024
	defaultFallbackEncoding = "gb18030"
	defaultRetentionHours   = 24
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Media: Media{
			SearchDirectories: []string{defaultMediaDir},
			SearchDepth:       defaultSearchDepth,
		},
		Tools: Tools{
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			CommandTimeout: defaultCommandTimeout,
			MaxOutputBytes: defaultMaxOutputBytes,
			MaxFileBytes:   defaultMaxFileBytes,
		},
		Decoding: Decoding{
			FallbackEncoding: defaultFallbackEncoding,
		},
		Retention: Retention{
			MaxAgeHours: defaultRetentionHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
