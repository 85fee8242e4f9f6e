package config

const (
	defaultDataDir        = "~/.local/share/clipsight/data"
	defaultReportDB       = "~/.local/share/clipsight/clipsight.db"
	defaultLogDir         = "~/.local/share/clipsight/logs"
	defaultLLMBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel       = "google/gemini-3-flash-preview"
	defaultLLMTitle       = "Clipsight Insight Runner"
	defaultLLMTimeout     = 60
	defaultMaxEntries     = 50
	defaultFirstSeconds   = 5
	defaultMode           = "lenient"
	defaultFrameTolerance = 0.10
	defaultServerBind     = "127.0.0.1:7460"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			ReportDB: defaultReportDB,
			LogDir:   defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Extraction: Extraction{
			MaxEntries:   defaultMaxEntries,
			FirstSeconds: defaultFirstSeconds,
		},
		Validation: Validation{
			Mode:           defaultMode,
			FrameTolerance: defaultFrameTolerance,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
