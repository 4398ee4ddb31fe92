package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "router.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, "router-id 2\ninput-ports 6002\noutputs 6001-1-1, 6003-1-3\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.RouterID)
	require.Equal(t, []int{6002}, cfg.InputPorts)
	require.Len(t, cfg.Outputs, 2)
	require.Equal(t, 6001, cfg.Outputs[0].Port)
	require.Equal(t, 1, cfg.Outputs[0].Cost)
	require.Equal(t, 1, cfg.Outputs[0].ID)
}

func TestLoadMultipleInputPorts(t *testing.T) {
	path := writeConfig(t, "router-id 1\ninput-ports 6001, 6011\noutputs 6002-4-2\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []int{6001, 6011}, cfg.InputPorts)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	require.Error(t, err)
}

func TestLoadTooFewLines(t *testing.T) {
	path := writeConfig(t, "router-id 1\ninput-ports 6001\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMalformedOutputs(t *testing.T) {
	path := writeConfig(t, "router-id 1\ninput-ports 6001\noutputs 6002-4\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsLowPorts(t *testing.T) {
	path := writeConfig(t, "router-id 1\ninput-ports 80\noutputs 6002-4-2\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsDuplicateNeighbor(t *testing.T) {
	path := writeConfig(t, "router-id 1\ninput-ports 6001\noutputs 6002-4-2, 6003-1-2\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsOutOfRangeID(t *testing.T) {
	path := writeConfig(t, "router-id 70000\ninput-ports 6001\noutputs 6002-4-2\n")
	_, err := Load(path)
	require.Error(t, err)
}
