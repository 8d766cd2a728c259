package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[clients]
size = 1
host = "239.0.0.1"
port = 9000

[proposers]
size = 1
host = "239.0.0.2"
port = 9001

[acceptors]
size = 3
host = "239.0.0.3"
port = 9002

[learners]
size = 1
host = "239.0.0.4"
port = 9003
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quorum.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParsesEveryRole(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	require.Equal(t, 1, cfg.Clients.Size)
	require.Equal(t, 3, cfg.Acceptors.Size)
	require.Equal(t, "239.0.0.3", cfg.Acceptors.Host)
	require.Equal(t, 9002, cfg.Acceptors.Port)
	require.Equal(t, 2, cfg.Majority())
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "this is not toml {{{"))
	require.Error(t, err)
}

func TestMajority(t *testing.T) {
	require.Equal(t, 1, Majority(1))
	require.Equal(t, 2, Majority(3))
	require.Equal(t, 3, Majority(5))
	require.Equal(t, 3, Majority(4))
}
