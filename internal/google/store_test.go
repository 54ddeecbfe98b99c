package google

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenFile_LoadMissing(t *testing.T) {
	store := NewTokenFile(filepath.Join(t.TempDir(), "token.json"))

	assert.False(t, store.Exists())
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestTokenFile_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewTokenFile(path)

	expiry := time.Now().Add(time.Hour).Round(time.Second)
	require.NoError(t, store.Save(&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}))
	assert.True(t, store.Exists())
	assert.Equal(t, path, store.Path())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, expiry.Equal(loaded.Expiry))
}

func TestTokenFile_LoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed json", content: "{not json"},
		{name: "empty token", content: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "token.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := NewTokenFile(path).Load()
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrNoToken)
		})
	}
}

func TestTokenFile_SaveNil(t *testing.T) {
	store := NewTokenFile(filepath.Join(t.TempDir(), "token.json"))
	assert.Error(t, store.Save(nil))
	assert.False(t, store.Exists())
}
