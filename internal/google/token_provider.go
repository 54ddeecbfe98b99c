package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/handoutbot/internal/instrumentation"
)

// ErrConsentRequired is returned when no usable token exists and no
// interactive consent flow is available to obtain one.
var ErrConsentRequired = errors.New("OAuth consent required")

// TokenProvider supplies OAuth tokens for Google APIs.
type TokenProvider interface {
	// Token returns a valid token, refreshing or authorizing as needed.
	Token(ctx context.Context) (*oauth2.Token, error)

	// TokenSource adapts the provider to oauth2.TokenSource.
	TokenSource(ctx context.Context) oauth2.TokenSource
}

// Authorizer obtains a brand new token, usually by asking the user.
type Authorizer func(ctx context.Context) (*oauth2.Token, error)

// FileTokenProviderConfig configures a FileTokenProvider.
type FileTokenProviderConfig struct {
	OAuthConfig *oauth2.Config
	Store       *TokenFile

	// Authorizer runs when neither the cache nor a refresh yields a token.
	// Leave nil to fail with ErrConsentRequired instead.
	Authorizer Authorizer

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// FileTokenProvider keeps a token in memory, backed by a TokenFile.
// Every token it hands out that differs from the cached one is written back,
// so refreshed credentials survive restarts.
type FileTokenProvider struct {
	conf       *oauth2.Config
	store      *TokenFile
	authorizer Authorizer
	metrics    *instrumentation.Metrics
	logger     *slog.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

// NewFileTokenProvider creates a provider. OAuthConfig and Store are required.
func NewFileTokenProvider(cfg FileTokenProviderConfig) (*FileTokenProvider, error) {
	if cfg.OAuthConfig == nil {
		return nil, fmt.Errorf("%w: no client configuration", ErrClientSecret)
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FileTokenProvider{
		conf:       cfg.OAuthConfig,
		store:      cfg.Store,
		authorizer: cfg.Authorizer,
		metrics:    cfg.Metrics,
		logger:     logger.With("component", "token_provider"),
	}, nil
}

// Token returns a valid token. It tries, in order: the in-memory token, the
// token file, a refresh with the stored refresh token, and the authorizer.
func (p *FileTokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token.Valid() {
		return p.token, nil
	}

	current := p.token
	if current == nil {
		cached, err := p.store.Load()
		switch {
		case err == nil:
			current = cached
		case errors.Is(err, ErrNoToken):
			p.logger.Debug("no cached token", "path", p.store.Path())
		default:
			p.logger.Warn("ignoring unreadable token file", "path", p.store.Path(), "error", err)
		}
	}

	if current.Valid() {
		p.token = current
		return current, nil
	}

	if current != nil && current.RefreshToken != "" {
		refreshed, err := p.conf.TokenSource(ctx, current).Token()
		if err == nil {
			p.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)
			p.remember(current, refreshed)
			return refreshed, nil
		}
		p.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultFailure)
		p.logger.Warn("token refresh failed, falling back to consent", "error", err)
	}

	if p.authorizer == nil {
		return nil, fmt.Errorf("%w: %s", ErrConsentRequired, GetAuthenticationErrorMessage(p.store.Path()))
	}

	granted, err := p.authorizer(ctx)
	if err != nil {
		p.metrics.RecordOAuthConsent(ctx, instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("failed to obtain consent: %w", err)
	}
	p.metrics.RecordOAuthConsent(ctx, instrumentation.OAuthResultSuccess)
	p.remember(current, granted)
	return granted, nil
}

// TokenSource returns a token source that goes through Token for every call.
func (p *FileTokenProvider) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &providerSource{ctx: ctx, provider: p}
}

// remember caches next and persists it when it differs from prev.
// A failed write is logged; the token is still usable for this process.
func (p *FileTokenProvider) remember(prev, next *oauth2.Token) {
	p.token = next
	if !tokenChanged(prev, next) {
		return
	}
	if err := p.store.Save(next); err != nil {
		p.logger.Error("failed to persist token", "path", p.store.Path(), "error", err)
		return
	}
	p.logger.Info("saved token", "path", p.store.Path(), "expiry", next.Expiry)
}

func tokenChanged(prev, next *oauth2.Token) bool {
	if prev == nil || next == nil {
		return next != nil
	}
	return prev.AccessToken != next.AccessToken ||
		prev.RefreshToken != next.RefreshToken ||
		!prev.Expiry.Equal(next.Expiry)
}

type providerSource struct {
	ctx      context.Context
	provider TokenProvider
}

func (s *providerSource) Token() (*oauth2.Token, error) {
	return s.provider.Token(s.ctx)
}
