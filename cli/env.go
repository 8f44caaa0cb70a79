package cli

import (
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/bridgewiz/trunkgauge/config"
	"github.com/bridgewiz/trunkgauge/logging"
)

// environment is what every command starts from: the config and a logger built from it.
type environment struct {
	cfg     *config.Config
	logger  logging.Logger
	closers []io.Closer
}

func newEnvironment(c *cli.Context) (*environment, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}

	level, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if c.Bool(flagDebug) {
		level = logging.DEBUG
	}

	env := &environment{cfg: cfg}
	if cfg.LogFile != "" {
		logger, closer, err := logging.NewLoggerWithFile("trunkgauge", level, logging.FileConfig{Path: cfg.LogFile})
		if err != nil {
			return nil, err
		}
		env.logger = logger
		env.closers = append(env.closers, closer)
	} else {
		env.logger = logging.NewLogger("trunkgauge")
		env.logger.SetLevel(level)
	}
	return env, nil
}

func (env *environment) Close() error {
	// stdout cannot always be synced
	_ = env.logger.Sync() //nolint:errcheck
	var err error
	for _, c := range env.closers {
		err = multierr.Combine(err, c.Close())
	}
	return err
}
