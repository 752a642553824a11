package ports

import (
	"context"

	"github.com/fanclash/gatekeeper/core"
)

// ChallengeStore holds the single pending challenge per wallet address.
type ChallengeStore interface {
	// Put stores a challenge keyed by address, overwriting any existing
	// unconsumed entry for that address.
	Put(ctx context.Context, challenge *core.Challenge) error

	// Get returns the pending challenge for address, or
	// core.ErrChallengeMissing if none exists.
	Get(ctx context.Context, address string) (*core.Challenge, error)

	// Delete removes the pending challenge for address. Deleting a
	// missing entry is not an error.
	Delete(ctx context.Context, address string) error
}

// AccountStore persists wallet account records.
type AccountStore interface {
	// Get returns the account for address, or (nil, nil) if no record
	// exists yet.
	Get(ctx context.Context, address string) (*core.Account, error)

	// Upsert writes the account record, replacing any existing record
	// for the same address.
	Upsert(ctx context.Context, account *core.Account) error

	// List returns all account records.
	List(ctx context.Context) ([]*core.Account, error)
}
