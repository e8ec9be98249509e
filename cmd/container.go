package cmd

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/release-tools/gitbump/internal/config"
)

// container holds the dependencies shared by the commands.

type container struct {
	cfg *config.Config
	log *zap.Logger
	fs  afero.Fs
}

// newContainer loads the configuration and builds the shared dependencies.
func newContainer() (*container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return &container{
		cfg: cfg,
		log: log,
		fs:  afero.NewOsFs(),
	}, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
