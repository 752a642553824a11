package store

import (
	"context"
	"sort"
	"sync"

	"github.com/fanclash/gatekeeper/core"
	"github.com/fanclash/gatekeeper/ports"
)

// MemoryChallengeStore is an in-memory implementation of the
// ChallengeStore interface. Single-use nonce guarantees only hold within
// one process, so it is suitable for local development and tests only.
type MemoryChallengeStore struct {
	challenges map[string]core.Challenge
	mu         sync.RWMutex
}

// NewMemoryChallengeStore creates a new in-memory challenge store.
func NewMemoryChallengeStore() ports.ChallengeStore {
	return &MemoryChallengeStore{
		challenges: make(map[string]core.Challenge),
	}
}

// Put stores a challenge, overwriting any pending one for the address.
func (s *MemoryChallengeStore) Put(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challenge.Address] = *challenge
	return nil
}

// Get returns the pending challenge for the address.
func (s *MemoryChallengeStore) Get(ctx context.Context, address string) (*core.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	challenge, ok := s.challenges[address]
	if !ok {
		return nil, core.ErrChallengeMissing
	}
	return &challenge, nil
}

// Delete removes the pending challenge for the address.
func (s *MemoryChallengeStore) Delete(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.challenges, address)
	return nil
}

// MemoryAccountStore is an in-memory implementation of the AccountStore
// interface, for local development and tests.
type MemoryAccountStore struct {
	accounts map[string]core.Account
	mu       sync.RWMutex
}

// NewMemoryAccountStore creates a new in-memory account store.
func NewMemoryAccountStore() ports.AccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]core.Account),
	}
}

// Get returns the account for the address, or nil if none exists.
func (s *MemoryAccountStore) Get(ctx context.Context, address string) (*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[address]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

// Upsert writes the account record.
func (s *MemoryAccountStore) Upsert(ctx context.Context, account *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[account.Address] = *account
	return nil
}

// List returns all accounts ordered by address.
func (s *MemoryAccountStore) List(ctx context.Context) ([]*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*core.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		a := account
		accounts = append(accounts, &a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Address < accounts[j].Address
	})
	return accounts, nil
}
