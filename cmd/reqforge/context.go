package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"reqforge/internal/config"
	"reqforge/internal/extraction"
	"reqforge/internal/logging"
	"reqforge/internal/pipeline"
	"reqforge/internal/records"
	"reqforge/internal/textgen"
	"reqforge/internal/transcribe"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// withStore opens the record store for one command invocation and closes it
// when the command returns.
func (c *commandContext) withStore(fn func(cfg *config.Config, store *records.Store, logger *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	store, err := records.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store, logger)
}

// newProcessor wires the per-record pipeline from config: generation client,
// extractor, and the transcriber when audio input is enabled.
func newProcessor(cfg *config.Config, store *records.Store, logger *slog.Logger) *pipeline.Processor {
	generator := textgen.NewClient(cfg.Generation)
	extractor := extraction.New(generator, logger)

	var transcriber transcribe.Transcriber
	if cfg.Transcription.Enabled {
		transcriber = transcribe.NewWhisperCLI(cfg.Transcription, logger)
	}
	return pipeline.NewProcessor(store, nil, extractor, transcriber, logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
