package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	// ErrClientSecret means the client-secret file is missing or unusable.
	// Nothing can be authorized without it, so callers should treat it as fatal.
	ErrClientSecret = errors.New("invalid OAuth client secret configuration")

	// ErrConsentTimeout is returned when the browser callback never arrives.
	ErrConsentTimeout = errors.New("timed out waiting for OAuth consent")
)

// DefaultConsentTimeout bounds how long the consent flow waits for the browser.
const DefaultConsentTimeout = 3 * time.Minute

// LoadClientConfig reads a client-secret JSON file as downloaded from the
// Google Cloud console and returns the OAuth2 configuration for scopes.
func LoadClientConfig(path string, scopes ...string) (*oauth2.Config, error) {
	if len(scopes) == 0 {
		scopes = DefaultOAuthScopes
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientSecret, err)
	}

	conf, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrClientSecret, path, err)
	}
	return conf, nil
}

// ConsentFlow runs the installed-app authorization code flow with a loopback
// redirect. The listener only exists for the duration of Run.
type ConsentFlow struct {
	// Config is the client configuration. Its RedirectURL is overridden.
	Config *oauth2.Config

	// Timeout bounds the wait for the browser callback (default: DefaultConsentTimeout).
	Timeout time.Duration

	// OnAuthURL receives the URL the user has to open. It defaults to
	// printing the URL on stderr.
	OnAuthURL func(authURL string)

	// Logger is used for progress messages (default: slog.Default()).
	Logger *slog.Logger
}

// Run waits for the user to grant access and exchanges the resulting code.
func (f *ConsentFlow) Run(ctx context.Context) (*oauth2.Token, error) {
	if f.Config == nil {
		return nil, fmt.Errorf("%w: no client configuration", ErrClientSecret)
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultConsentTimeout
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to open callback listener: %w", err)
	}
	defer ln.Close()

	conf := *f.Config
	conf.RedirectURL = fmt.Sprintf("http://%s/callback", ln.Addr().String())

	state, err := randomString(24)
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			sendOnce(errCh, errors.New("OAuth callback state mismatch"))
			return
		}
		if e := query.Get("error"); e != "" {
			http.Error(w, "authorization denied", http.StatusBadRequest)
			sendOnce(errCh, fmt.Errorf("authorization denied: %s", e))
			return
		}
		code := query.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			sendOnce(errCh, errors.New("OAuth callback without authorization code"))
			return
		}
		_, _ = io.WriteString(w, "handoutbot is authorized. You can close this tab.")
		sendOnce(codeCh, code)
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		_ = srv.Serve(ln)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(verifier),
	)
	if f.OnAuthURL != nil {
		f.OnAuthURL(authURL)
	} else {
		fmt.Fprintf(os.Stderr, "Open this URL in a browser to authorize Google Drive access:\n\n%s\n\n", authURL)
	}
	logger.Info("waiting for OAuth consent", "redirect", conf.RedirectURL, "timeout", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case code := <-codeCh:
		token, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
		if err != nil {
			return nil, fmt.Errorf("failed to exchange auth code: %w", err)
		}
		if token.RefreshToken == "" {
			logger.Warn("no refresh token returned; revoke the previous grant and authorize again to get one")
		}
		return token, nil
	case err := <-errCh:
		return nil, err
	case <-timer.C:
		return nil, fmt.Errorf("%w after %s", ErrConsentTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// NewHTTPClient returns an HTTP client authorized by provider.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func NewHTTPClient(ctx context.Context, provider TokenProvider) *http.Client {
	client := oauth2.NewClient(ctx, provider.TokenSource(ctx))

	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client
}

// GetAuthenticationErrorMessage explains how to recover from missing credentials.
func GetAuthenticationErrorMessage(tokenPath string) string {
	return fmt.Sprintf(`Google Drive OAuth token not found or no longer usable (%s).

To authorize access:
1. Place the OAuth client secret downloaded from the Google Cloud console next to the bot
2. Run: handoutbot auth
3. Open the printed URL and grant read access to Drive metadata

The token is cached and refreshed automatically afterwards.`, tokenPath)
}

func sendOnce[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func randomString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
