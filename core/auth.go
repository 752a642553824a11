package core

import (
	"fmt"
	"time"
)

// Role is the authorization level of a wallet.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Challenge represents a pending authentication challenge.
// At most one challenge exists per wallet address at a time.
type Challenge struct {
	ID       string    // Unique identifier for the challenge
	Address  string    // Base58 wallet address the challenge was issued to
	Nonce    string    // Random hex nonce embedded in the signed message
	IssuedAt time.Time // When the challenge was created
}

// challengeTemplate is the human-readable message the client signs. It
// embeds the address, nonce, and issuance time so the signed text is
// self-describing and cannot be reused across contexts.
const challengeTemplate = "fanclash.gg wants you to sign in with your wallet:\n%s\n\nNonce: %s\nIssued At: %s"

// Message returns the canonical message text for the challenge. The
// verification step reconstructs the exact same text from the stored
// challenge, so the client must sign this string byte for byte.
func (c *Challenge) Message() string {
	return fmt.Sprintf(challengeTemplate, c.Address, c.Nonce, c.IssuedAt.UTC().Format(time.RFC3339))
}

// Account is the persisted record for a wallet. Created on first
// successful verification, never deleted by this service.
type Account struct {
	Address     string    `json:"address"`                // Base58 wallet address, unique
	Role        Role      `json:"role"`                   // USER or ADMIN
	DisplayName string    `json:"display_name,omitempty"` // Optional, settable by collaborators
	CreatedAt   time.Time `json:"created_at"`             // When the account was first seen
}

// Identity is the verified identity attached to a request after token
// verification and role resolution. Request-scoped, discarded afterwards.
type Identity struct {
	Address string
	Role    Role
}

// Session carries the claims of an issued or verified session token.
type Session struct {
	ID        string    // Token JTI
	Address   string    // Subject wallet address
	Role      Role      // Role claim embedded at issuance
	IssuedAt  time.Time // When the token was issued
	ExpiresAt time.Time // When the token expires
}
