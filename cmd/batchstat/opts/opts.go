package opts

import (
	"context"
	"os"

	"github.com/walteh/batchstat/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// RootOpts carries the shared flag values into each subcommand.
type RootOpts struct {
	ConfigFile string
	Debug      bool
}

// LoadConfig resolves the effective configuration. A missing file is
// only an error when the user pointed at one explicitly; the default
// location falls back to built-in defaults.
func (o *RootOpts) LoadConfig(ctx context.Context) (*config.Config, error) {
	if _, err := os.Stat(o.ConfigFile); err != nil {
		if os.IsNotExist(err) && o.ConfigFile == config.DefaultFile {
			return config.Default(), nil
		}
		return nil, errors.Errorf("config file %s: %w", o.ConfigFile, err)
	}
	return config.Load(ctx, o.ConfigFile)
}
