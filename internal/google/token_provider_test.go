package google

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestProvider(t *testing.T, conf *oauth2.Config, store *TokenFile, authorizer Authorizer) *FileTokenProvider {
	t.Helper()
	p, err := NewFileTokenProvider(FileTokenProviderConfig{
		OAuthConfig: conf,
		Store:       store,
		Authorizer:  authorizer,
	})
	require.NoError(t, err)
	return p
}

func failingAuthorizer(t *testing.T) Authorizer {
	return func(context.Context) (*oauth2.Token, error) {
		t.Error("consent must not be requested")
		return nil, errors.New("unexpected consent")
	}
}

func TestNewFileTokenProvider_Validation(t *testing.T) {
	_, err := NewFileTokenProvider(FileTokenProviderConfig{Store: NewTokenFile("token.json")})
	assert.ErrorIs(t, err, ErrClientSecret)

	_, err = NewFileTokenProvider(FileTokenProviderConfig{OAuthConfig: &oauth2.Config{}})
	assert.Error(t, err)
}

func TestFileTokenProvider_CachedTokenValid(t *testing.T) {
	store := NewTokenFile(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, store.Save(&oauth2.Token{
		AccessToken: "cached",
		Expiry:      time.Now().Add(time.Hour),
	}))

	endpoint := &fakeTokenEndpoint{}
	p := newTestProvider(t, newTestOAuthConfig(t, endpoint), store, failingAuthorizer(t))

	token, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", token.AccessToken)
	assert.Zero(t, endpoint.refreshes.Load())
}

func TestFileTokenProvider_RefreshRoundTrip(t *testing.T) {
	store := NewTokenFile(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, store.Save(&oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "r1",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	endpoint := &fakeTokenEndpoint{}
	conf := newTestOAuthConfig(t, endpoint)

	first := newTestProvider(t, conf, store, failingAuthorizer(t))
	token, err := first.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-r1", token.AccessToken)
	assert.Equal(t, "r1", token.RefreshToken)
	assert.Equal(t, int32(1), endpoint.refreshes.Load())

	// Second call is served from memory.
	_, err = first.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), endpoint.refreshes.Load())

	// A fresh process reads the refreshed token from disk without consent.
	second := newTestProvider(t, conf, store, failingAuthorizer(t))
	token, err = second.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-r1", token.AccessToken)
	assert.Equal(t, int32(1), endpoint.refreshes.Load())
}

func TestFileTokenProvider_RefreshFailureFallsBackToConsent(t *testing.T) {
	store := NewTokenFile(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, store.Save(&oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "revoked",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	endpoint := &fakeTokenEndpoint{failAll: true}
	consents := 0
	p := newTestProvider(t, newTestOAuthConfig(t, endpoint), store, func(context.Context) (*oauth2.Token, error) {
		consents++
		return &oauth2.Token{AccessToken: "consented", RefreshToken: "new", Expiry: time.Now().Add(time.Hour)}, nil
	})

	token, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "consented", token.AccessToken)
	assert.Equal(t, 1, consents)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "consented", saved.AccessToken)
}

func TestFileTokenProvider_ConsentRequired(t *testing.T) {
	store := NewTokenFile(filepath.Join(t.TempDir(), "token.json"))
	p := newTestProvider(t, newTestOAuthConfig(t, &fakeTokenEndpoint{}), store, nil)

	_, err := p.Token(context.Background())
	assert.ErrorIs(t, err, ErrConsentRequired)
	assert.False(t, store.Exists())
}

func TestFileTokenProvider_ConsentFailure(t *testing.T) {
	store := NewTokenFile(filepath.Join(t.TempDir(), "token.json"))
	p := newTestProvider(t, newTestOAuthConfig(t, &fakeTokenEndpoint{}), store, func(context.Context) (*oauth2.Token, error) {
		return nil, ErrConsentTimeout
	})

	_, err := p.Token(context.Background())
	assert.ErrorIs(t, err, ErrConsentTimeout)
	assert.False(t, store.Exists())
}

func TestFileTokenProvider_TokenSource(t *testing.T) {
	store := NewTokenFile(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "cached", Expiry: time.Now().Add(time.Hour)}))
	p := newTestProvider(t, newTestOAuthConfig(t, &fakeTokenEndpoint{}), store, nil)

	token, err := p.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	assert.Equal(t, "cached", token.AccessToken)
}

func TestTokenChanged(t *testing.T) {
	base := &oauth2.Token{AccessToken: "a", RefreshToken: "r"}
	assert.True(t, tokenChanged(nil, base))
	assert.False(t, tokenChanged(base, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))
	assert.True(t, tokenChanged(base, &oauth2.Token{AccessToken: "b", RefreshToken: "r"}))
	assert.False(t, tokenChanged(base, nil))
}
