package cryptox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "secret")

	calls := 0
	gen := func() ([]byte, error) {
		calls++
		return RandomSecret(32)
	}

	first, err := LoadOrCreateFile(path, gen)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	second, err := LoadOrCreateFile(path, gen)
	require.NoError(t, err)
	require.Equal(t, first, second, "existing file must be reused")
	require.Equal(t, 1, calls)
}

func TestLoadOrCreateFile_GeneratorError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	boom := errors.New("boom")

	_, err := LoadOrCreateFile(path, func() ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "nothing should be written on failure")
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret(32)
	require.NoError(t, err)
	require.Len(t, a, 43, "32 bytes base64url without padding")

	b, err := RandomSecret(32)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	_, err = RandomSecret(0)
	require.Error(t, err)
}
