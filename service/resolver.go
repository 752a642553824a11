package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fanclash/gatekeeper/core"
	"github.com/fanclash/gatekeeper/ports"
)

// Resolver determines the effective role for a wallet. Precedence,
// highest wins:
//
//  1. address on the static admin allow-list -> ADMIN
//  2. persisted account record role == ADMIN -> ADMIN
//  3. token claim role == ADMIN            -> ADMIN
//  4. otherwise                            -> USER
//
// The allow-list is the operator's ground truth and wins over stale
// records and stale tokens. The account record ranks above the token
// claim because it can change without reissuing tokens, while the claim
// is long-lived and irrevocable.
type Resolver struct {
	allowlist map[string]struct{}
	accounts  ports.AccountStore
}

// NewResolver creates a resolver over the configured admin wallets.
// Addresses are compared case-insensitively.
func NewResolver(adminWallets []string, accounts ports.AccountStore) *Resolver {
	allowlist := make(map[string]struct{}, len(adminWallets))
	for _, w := range adminWallets {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		allowlist[strings.ToLower(w)] = struct{}{}
	}
	return &Resolver{allowlist: allowlist, accounts: accounts}
}

// IsAllowlisted reports whether the address is on the admin allow-list.
func (r *Resolver) IsAllowlisted(address string) bool {
	_, ok := r.allowlist[strings.ToLower(address)]
	return ok
}

// Resolve computes the effective role for address. A missing account
// record is tolerated (the record may not exist yet right after
// verification); a failing store is not.
func (r *Resolver) Resolve(ctx context.Context, address string, tokenRole core.Role) (core.Role, error) {
	if r.IsAllowlisted(address) {
		return core.RoleAdmin, nil
	}

	account, err := r.accounts.Get(ctx, address)
	if err != nil {
		return "", fmt.Errorf("failed to load account: %w", err)
	}
	if account != nil && account.Role == core.RoleAdmin {
		return core.RoleAdmin, nil
	}

	if tokenRole == core.RoleAdmin {
		return core.RoleAdmin, nil
	}

	return core.RoleUser, nil
}
