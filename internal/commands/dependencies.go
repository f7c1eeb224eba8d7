package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pratham/chatterm/internal/api"
	"github.com/pratham/chatterm/internal/chat"
	"github.com/pratham/chatterm/internal/config"
	"github.com/pratham/chatterm/internal/genai"
	"github.com/pratham/chatterm/internal/ident"
)

// resolvedConfig loads the config and applies command-line flag overrides.
func resolvedConfig() (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, err
	}

	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}
	if modelFlag != "" {
		cfg.GenModel = modelFlag
	}

	return cfg, nil
}

// buildController wires the controller from configuration: the persistence
// client, the generation client, the id generator and the logger.
func buildController(cfg config.Config) (*chat.Controller, error) {
	logger, err := buildLogger()
	if err != nil {
		return nil, err
	}

	syncer, err := api.NewClient(cfg.APIURL,
		api.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	if err != nil {
		return nil, err
	}

	gen := genai.NewGenerator(cfg.GenBaseURL, config.APIKey(), cfg.GenModel)

	return chat.NewController(syncer, gen, ident.NewGenerator(), logger), nil
}

// buildLogger writes structured logs to a file under the config directory so
// stderr stays clean for the terminal UI.
func buildLogger() (*zap.Logger, error) {
	configDir, err := config.EnsureConfigDir()
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{filepath.Join(configDir, "chatterm.log")}
	zapCfg.ErrorOutputPaths = zapCfg.OutputPaths

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}
