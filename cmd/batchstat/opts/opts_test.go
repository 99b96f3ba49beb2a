package opts_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/batchstat/cmd/batchstat/opts"
	"github.com/walteh/batchstat/pkg/config"
)

func TestLoadConfig_DefaultFileMissingFallsBack(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	ro := &opts.RootOpts{ConfigFile: config.DefaultFile}
	cfg, err := ro.LoadConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, runtime.NumCPU(), cfg.Workers, "missing default file means built-in defaults")
}

func TestLoadConfig_ExplicitFileMissingFails(t *testing.T) {
	ro := &opts.RootOpts{ConfigFile: filepath.Join(t.TempDir(), "custom.yaml")}

	_, err := ro.LoadConfig(context.Background())
	assert.Error(t, err, "an explicitly named config file must exist")
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0644))

	ro := &opts.RootOpts{ConfigFile: path}
	cfg, err := ro.LoadConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}
