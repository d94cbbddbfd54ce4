package config

const (
	defaultDataDir    = "~/.local/share/reqforge/data"
	defaultImportDir  = "~/.local/share/reqforge/import"
	defaultExportDir  = "~/.local/share/reqforge/exports"
	defaultLogDir     = "~/.local/share/reqforge/logs"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"

	defaultGenerationBaseURL  = "https://openrouter.ai/api/v1/chat/completions"
	defaultGenerationModel    = "google/flan-t5-base"
	defaultGenerationTimeout  = 60
	defaultMaxInputChars      = 2048
	defaultMaxOutputTokens    = 256
	defaultTemperature        = 0.7

	defaultTranscriptionBinary      = "whisper-cli"
	defaultTranscriptionModel       = "small"
	defaultMaxAudioDurationSeconds  = 300
	defaultTranscriptionTimeout     = 600

	defaultMaxWorkers           = 4
	defaultBatchSize            = 10
	defaultRecordTimeoutSeconds = 300
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ImportDir: defaultImportDir,
			ExportDir: defaultExportDir,
			LogDir:    defaultLogDir,
		},
		Generation: Generation{
			BaseURL:         defaultGenerationBaseURL,
			Model:           defaultGenerationModel,
			TimeoutSeconds:  defaultGenerationTimeout,
			MaxInputChars:   defaultMaxInputChars,
			MaxOutputTokens: defaultMaxOutputTokens,
			Temperature:     defaultTemperature,
		},
		Transcription: Transcription{
			Enabled:            false,
			Binary:             defaultTranscriptionBinary,
			Model:              defaultTranscriptionModel,
			MaxDurationSeconds: defaultMaxAudioDurationSeconds,
			TimeoutSeconds:     defaultTranscriptionTimeout,
		},
		Processing: Processing{
			MaxWorkers:           defaultMaxWorkers,
			BatchSize:            defaultBatchSize,
			RecordTimeoutSeconds: defaultRecordTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
