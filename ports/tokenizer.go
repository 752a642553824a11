package ports

import "github.com/fanclash/gatekeeper/core"

// Tokenizer converts between sessions and signed bearer tokens.
type Tokenizer interface {
	// SessionToToken signs the session into a compact token string.
	SessionToToken(session *core.Session) (string, error)

	// TokenToSession verifies the token signature and expiry and returns
	// the embedded session. Failures are core.ErrTokenExpired or
	// core.ErrInvalidToken (malformed or bad signature).
	TokenToSession(token string) (*core.Session, error)
}
