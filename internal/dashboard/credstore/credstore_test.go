package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", fileName)
	f := NewFile(path)

	token, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, f.Save("abc.def"))
	token, err = f.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "token: abc.def\n", string(raw))

	require.NoError(t, f.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, f.Clear())
}

func TestFile_PreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), fileName)
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://x\n"), 0o600))
	f := NewFile(path)

	require.NoError(t, f.Save("tok"))
	require.NoError(t, f.Clear())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "api_url: http://x\n", string(raw))
}

func TestFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), fileName)
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0o600))

	_, err := NewFile(path).Load()
	assert.Error(t, err)
}

func TestMemory(t *testing.T) {
	var s Store = NewMemory("seed")
	token, _ := s.Load()
	assert.Equal(t, "seed", token)

	require.NoError(t, s.Save("next"))
	token, _ = s.Load()
	assert.Equal(t, "next", token)

	require.NoError(t, s.Clear())
	token, _ = s.Load()
	assert.Empty(t, token)
}
