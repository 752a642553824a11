package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/fanclash/gatekeeper/core"
	"github.com/fanclash/gatekeeper/ports"
	"github.com/google/uuid"
)

const (
	// DefaultChallengeTTL bounds how long an unconsumed challenge stays
	// verifiable.
	DefaultChallengeTTL = 5 * time.Minute

	// DefaultSessionTTL is the session token lifetime. Tokens are
	// irrevocable bearer credentials, so the low end of the allowed
	// 7-30 day window is the default.
	DefaultSessionTTL = 7 * 24 * time.Hour
)

// AuthService handles the challenge/response authentication flow.
type AuthService struct {
	challenges ports.ChallengeStore
	accounts   ports.AccountStore
	tokenizer  ports.Tokenizer
	eventPub   ports.EventPublisher
	resolver   *Resolver

	challengeTTL time.Duration
	sessionTTL   time.Duration

	now func() time.Time
}

// Option configures an AuthService.
type Option func(*AuthService)

// WithChallengeTTL overrides the challenge lifetime.
func WithChallengeTTL(ttl time.Duration) Option {
	return func(s *AuthService) { s.challengeTTL = ttl }
}

// WithSessionTTL overrides the session token lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *AuthService) { s.sessionTTL = ttl }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	challenges ports.ChallengeStore,
	accounts ports.AccountStore,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	resolver *Resolver,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		challenges:   challenges,
		accounts:     accounts,
		tokenizer:    tokenizer,
		eventPub:     eventPub,
		resolver:     resolver,
		challengeTTL: DefaultChallengeTTL,
		sessionTTL:   DefaultSessionTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is returned by VerifyAndIssue on success.
type LoginResult struct {
	Token   string
	Address string
	Role    core.Role
}

// CreateChallenge generates and stores a new challenge for the address,
// overwriting any pending one, and returns it along with the message
// text the client must sign.
func (s *AuthService) CreateChallenge(ctx context.Context, address string) (*core.Challenge, string, error) {
	if err := core.ValidateAddress(address); err != nil {
		return nil, "", err
	}

	nonceBytes := make([]byte, 16)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	challenge := &core.Challenge{
		ID:       uuid.New().String(),
		Address:  address,
		Nonce:    hex.EncodeToString(nonceBytes),
		IssuedAt: s.now(),
	}

	if err := s.challenges.Put(ctx, challenge); err != nil {
		return nil, "", fmt.Errorf("failed to store challenge: %w", err)
	}

	return challenge, challenge.Message(), nil
}

// VerifyAndIssue checks the signature over the pending challenge for the
// address and, on success, consumes the challenge, upserts the account,
// and issues a session token. A failed signature leaves the challenge in
// place so the client can retry until the TTL runs out.
func (s *AuthService) VerifyAndIssue(ctx context.Context, address, signature string) (*LoginResult, error) {
	if err := core.ValidateAddress(address); err != nil {
		return nil, err
	}

	challenge, err := s.challenges.Get(ctx, address)
	if err != nil {
		return nil, err
	}

	if s.now().Sub(challenge.IssuedAt) > s.challengeTTL {
		// Purge the stale entry so the next attempt reports it missing.
		if err := s.challenges.Delete(ctx, address); err != nil {
			log.Printf("gatekeeper: failed to purge expired challenge for %s: %v", address, err)
		}
		return nil, core.ErrChallengeExpired
	}

	if !core.VerifySignature(address, challenge.Message(), signature) {
		return nil, core.ErrInvalidSignature
	}

	// Single-use: consume on success only.
	if err := s.challenges.Delete(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to consume challenge: %w", err)
	}

	role, created, err := s.upsertAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &core.Session{
		ID:        uuid.New().String(),
		Address:   address,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	// The login event is a courtesy to the contest services; the token
	// is already issued, so a broker hiccup must not fail the request.
	if err := s.eventPub.PublishLogin(ctx, address, role, session.ID, created); err != nil {
		log.Printf("gatekeeper: failed to publish login event for %s: %v", address, err)
	}

	return &LoginResult{Token: token, Address: address, Role: role}, nil
}

// upsertAccount creates the account on first verification, or promotes
// an existing one when the address is allow-listed. Returns the
// effective role and whether the record was created.
func (s *AuthService) upsertAccount(ctx context.Context, address string) (core.Role, bool, error) {
	account, err := s.accounts.Get(ctx, address)
	if err != nil {
		return "", false, fmt.Errorf("failed to load account: %w", err)
	}

	allowlisted := s.resolver.IsAllowlisted(address)

	if account == nil {
		role := core.RoleUser
		if allowlisted {
			role = core.RoleAdmin
		}
		account = &core.Account{
			Address:   address,
			Role:      role,
			CreatedAt: s.now(),
		}
		if err := s.accounts.Upsert(ctx, account); err != nil {
			return "", false, fmt.Errorf("failed to create account: %w", err)
		}
		return role, true, nil
	}

	if allowlisted && account.Role != core.RoleAdmin {
		account.Role = core.RoleAdmin
		if err := s.accounts.Upsert(ctx, account); err != nil {
			return "", false, fmt.Errorf("failed to promote account: %w", err)
		}
	}

	role := account.Role
	if allowlisted {
		role = core.RoleAdmin
	}
	return role, false, nil
}

// Authenticate verifies a session token and re-resolves the role from
// the account record and allow-list rather than trusting the embedded
// claim alone. Returns the identity to attach to the request.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*core.Identity, error) {
	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, err
	}

	role, err := s.resolver.Resolve(ctx, session.Address, session.Role)
	if err != nil {
		return nil, err
	}

	return &core.Identity{Address: session.Address, Role: role}, nil
}

// Accounts exposes the account store to read-only admin surfaces.
func (s *AuthService) Accounts() ports.AccountStore {
	return s.accounts
}
