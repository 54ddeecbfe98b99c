package google

// DefaultOAuthScopes are the Google OAuth scopes the bot asks for.
//
// Only file metadata is needed: the bot lists names and ids and hands out the
// public export URL, it never downloads content itself.
var DefaultOAuthScopes = []string{
	"https://www.googleapis.com/auth/drive.metadata.readonly",
}
