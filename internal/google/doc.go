// Package google provides OAuth2 credential management for the Google Drive API.
//
// The credential lifecycle is: load the cached token from disk, refresh it in
// place when it has expired and a refresh token exists, otherwise run an
// interactive consent flow against a transient local callback listener. Every
// new or refreshed token is written back to the token file, so a restart does
// not require consent again.
//
// The TokenProvider interface is what the rest of the application depends on.
// FileTokenProvider is the production implementation.
package google
