package config

const (
	defaultConfigPath  = "~/.config/jimaku/config.toml"
	projectConfigName  = "jimaku.toml"
	defaultOutputDir   = "."
	defaultLogDir      = "~/.local/share/jimaku/logs"
	defaultHistoryDB   = "~/.local/share/jimaku/history.db"
	defaultLLMBaseURL  = "https://api.deepseek.com"
	defaultLLMModel    = "deepseek-chat"
	defaultLLMTimeout  = 120
	defaultTemperature = 0.3
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults. The subtitle
// limits match subtitles.DefaultSettings.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Subtitles: Subtitles{
			MinDurationTarget:      1.2,
			MinDurationAbsolute:    1.0,
			MaxDuration:            12.0,
			MaxCharsPerLine:        60,
			DefaultGapMS:           100,
			SimilarityThreshold:    0.7,
			MergeGapThreshold:      0.5,
			ShortEntryMaxExtension: 0.5,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Temperature:    defaultTemperature,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
