package main

import (
	stderrors "errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/internal/app"
	"github.com/vango-dev/vroute/internal/config"
	"github.com/vango-dev/vroute/internal/errors"
)

// loadConfig reads the configuration named by --config, or searches upward
// from the working directory. Without any file it returns the defaults, which
// select the built-in route table.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case flags.configPath == "":
		cfg, err = config.LoadFromWorkingDir()
		var e *errors.Error
		if stderrors.As(err, &e) && e.Code == "R060" {
			cfg, err = config.New(), nil
		}
	default:
		var fi os.FileInfo
		fi, err = os.Stat(flags.configPath)
		switch {
		case err != nil:
			err = errors.New("R060").WithDetail("No configuration at " + flags.configPath)
		case fi.IsDir():
			cfg, err = config.Load(flags.configPath)
		default:
			cfg, err = config.LoadFile(flags.configPath)
		}
	}
	if err != nil {
		return nil, err
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// loadApp builds the App for a command, logging to its error stream.
func loadApp(cmd *cobra.Command, flags *globalFlags) (*app.App, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.WithLogOutput(cmd.ErrOrStderr()))
}
