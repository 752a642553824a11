package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/fanclash/gatekeeper/adapters/events"
	"github.com/fanclash/gatekeeper/adapters/store"
	"github.com/fanclash/gatekeeper/adapters/tokenizer"
	"github.com/fanclash/gatekeeper/core"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type wallet struct {
	address string
	priv    ed25519.PrivateKey
}

func newWallet(t *testing.T) wallet {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return wallet{address: base58.Encode(pub), priv: priv}
}

func (w wallet) sign(message string) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(w.priv, []byte(message)))
}

func newTestService(t *testing.T, adminWallets []string) (*AuthService, *fakeClock) {
	t.Helper()
	accounts := store.NewMemoryAccountStore()
	clock := &fakeClock{t: time.Now()}
	svc := NewAuthService(
		store.NewMemoryChallengeStore(),
		accounts,
		tokenizer.NewJWTTokenizer([]byte("test-secret")),
		events.NopPublisher{},
		NewResolver(adminWallets, accounts),
		WithClock(clock.Now),
	)
	return svc, clock
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	w := newWallet(t)

	challenge, message, err := svc.CreateChallenge(ctx, w.address)
	require.NoError(t, err)
	require.Contains(t, message, w.address)
	require.Contains(t, message, challenge.Nonce)

	result, err := svc.VerifyAndIssue(ctx, w.address, w.sign(message))
	require.NoError(t, err)
	require.Equal(t, w.address, result.Address)
	require.Equal(t, core.RoleUser, result.Role)
	require.NotEmpty(t, result.Token)

	// The account record now exists with role USER.
	account, err := svc.Accounts().Get(ctx, w.address)
	require.NoError(t, err)
	require.Equal(t, core.RoleUser, account.Role)
}

func TestLoginRejectsWrongKeypair(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	w := newWallet(t)
	other := newWallet(t)

	_, message, err := svc.CreateChallenge(ctx, w.address)
	require.NoError(t, err)

	_, err = svc.VerifyAndIssue(ctx, w.address, other.sign(message))
	require.ErrorIs(t, err, core.ErrInvalidSignature)

	// A failed attempt does not consume the challenge; a correct retry
	// against the same unexpired challenge succeeds.
	result, err := svc.VerifyAndIssue(ctx, w.address, w.sign(message))
	require.NoError(t, err)
	require.Equal(t, core.RoleUser, result.Role)
}

func TestLoginRejectsWrongMessage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	w := newWallet(t)

	_, message, err := svc.CreateChallenge(ctx, w.address)
	require.NoError(t, err)

	_, err = svc.VerifyAndIssue(ctx, w.address, w.sign(message+" tampered"))
	require.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestChallengeSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	w := newWallet(t)

	_, message, err := svc.CreateChallenge(ctx, w.address)
	require.NoError(t, err)

	signature := w.sign(message)
	_, err = svc.VerifyAndIssue(ctx, w.address, signature)
	require.NoError(t, err)

	// The challenge was consumed; the same correct signature no longer
	// authenticates.
	_, err = svc.VerifyAndIssue(ctx, w.address, signature)
	require.ErrorIs(t, err, core.ErrChallengeMissing)
}

func TestChallengeExpiry(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t, nil)
	w := newWallet(t)

	first, message, err := svc.CreateChallenge(ctx, w.address)
	require.NoError(t, err)

	clock.Advance(DefaultChallengeTTL + time.Second)

	_, err = svc.VerifyAndIssue(ctx, w.address, w.sign(message))
	require.ErrorIs(t, err, core.ErrChallengeExpired)

	// The expired entry was purged.
	_, err = svc.VerifyAndIssue(ctx, w.address, w.sign(message))
	require.ErrorIs(t, err, core.ErrChallengeMissing)

	// A fresh challenge is issued with a new nonce and succeeds.
	second, message, err := svc.CreateChallenge(ctx, w.address)
	require.NoError(t, err)
	require.NotEqual(t, first.Nonce, second.Nonce)

	_, err = svc.VerifyAndIssue(ctx, w.address, w.sign(message))
	require.NoError(t, err)
}

func TestChallengeReissueInvalidatesOldNonce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	w := newWallet(t)

	_, oldMessage, err := svc.CreateChallenge(ctx, w.address)
	require.NoError(t, err)

	_, newMessage, err := svc.CreateChallenge(ctx, w.address)
	require.NoError(t, err)

	// Only the most recent challenge is consumable.
	_, err = svc.VerifyAndIssue(ctx, w.address, w.sign(oldMessage))
	require.ErrorIs(t, err, core.ErrInvalidSignature)

	_, err = svc.VerifyAndIssue(ctx, w.address, w.sign(newMessage))
	require.NoError(t, err)
}

func TestAllowlistedWalletGetsAdmin(t *testing.T) {
	ctx := context.Background()
	w := newWallet(t)
	svc, _ := newTestService(t, []string{w.address})

	_, message, err := svc.CreateChallenge(ctx, w.address)
	require.NoError(t, err)

	result, err := svc.VerifyAndIssue(ctx, w.address, w.sign(message))
	require.NoError(t, err)
	require.Equal(t, core.RoleAdmin, result.Role)

	// Introspection re-resolves and agrees.
	identity, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	require.Equal(t, w.address, identity.Address)
	require.Equal(t, core.RoleAdmin, identity.Role)

	account, err := svc.Accounts().Get(ctx, w.address)
	require.NoError(t, err)
	require.Equal(t, core.RoleAdmin, account.Role)
}

func TestAuthenticateIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	w := newWallet(t)

	_, message, err := svc.CreateChallenge(ctx, w.address)
	require.NoError(t, err)
	result, err := svc.VerifyAndIssue(ctx, w.address, w.sign(message))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		identity, err := svc.Authenticate(ctx, result.Token)
		require.NoError(t, err)
		require.Equal(t, w.address, identity.Address)
		require.Equal(t, core.RoleUser, identity.Role)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	require.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestVerifyRejectsMalformedAddress(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, _, err := svc.CreateChallenge(context.Background(), "not-an-address")
	require.ErrorIs(t, err, core.ErrInvalidAddress)

	_, err = svc.VerifyAndIssue(context.Background(), "not-an-address", "sig")
	require.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestResolverPrecedence(t *testing.T) {
	ctx := context.Background()
	accounts := store.NewMemoryAccountStore()
	allowlisted := "AdminWallet1111111111111111111111"
	resolver := NewResolver([]string{allowlisted}, accounts)

	t.Run("allowlist wins over demoted account and user token", func(t *testing.T) {
		require.NoError(t, accounts.Upsert(ctx, &core.Account{Address: allowlisted, Role: core.RoleUser}))
		role, err := resolver.Resolve(ctx, allowlisted, core.RoleUser)
		require.NoError(t, err)
		require.Equal(t, core.RoleAdmin, role)
	})

	t.Run("allowlist comparison is case-insensitive", func(t *testing.T) {
		role, err := resolver.Resolve(ctx, "ADMINWALLET1111111111111111111111", core.RoleUser)
		require.NoError(t, err)
		require.Equal(t, core.RoleAdmin, role)
	})

	t.Run("account record wins over user token claim", func(t *testing.T) {
		require.NoError(t, accounts.Upsert(ctx, &core.Account{Address: "dbadmin", Role: core.RoleAdmin}))
		role, err := resolver.Resolve(ctx, "dbadmin", core.RoleUser)
		require.NoError(t, err)
		require.Equal(t, core.RoleAdmin, role)
	})

	t.Run("token claim admin honored when nothing else says so", func(t *testing.T) {
		role, err := resolver.Resolve(ctx, "tokenadmin", core.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, core.RoleAdmin, role)
	})

	t.Run("missing account defaults to user", func(t *testing.T) {
		role, err := resolver.Resolve(ctx, "nobody", core.RoleUser)
		require.NoError(t, err)
		require.Equal(t, core.RoleUser, role)
	})
}

func TestExistingAdminAccountKeepsRole(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	w := newWallet(t)

	// Simulate an out-of-band promotion by a collaborator service.
	require.NoError(t, svc.Accounts().Upsert(ctx, &core.Account{
		Address:   w.address,
		Role:      core.RoleAdmin,
		CreatedAt: time.Now(),
	}))

	_, message, err := svc.CreateChallenge(ctx, w.address)
	require.NoError(t, err)

	result, err := svc.VerifyAndIssue(ctx, w.address, w.sign(message))
	require.NoError(t, err)
	require.Equal(t, core.RoleAdmin, result.Role)
}
