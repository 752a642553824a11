package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fanclash/gatekeeper/core"
	"github.com/fanclash/gatekeeper/ports"
	"github.com/redis/go-redis/v9"
)

const (
	challengePrefix = "gatekeeper:challenge:"
	accountPrefix   = "gatekeeper:account:"
)

// RedisChallengeStore is a Redis implementation of the ChallengeStore
// interface. Challenge entries carry a key TTL as a backstop; the service
// still checks the issuance age so a purged entry and an expired entry
// report the same way regardless of backend.
type RedisChallengeStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisChallengeStore creates a new Redis challenge store. Entries
// expire from Redis after ttl.
func NewRedisChallengeStore(client *redis.Client, ttl time.Duration) ports.ChallengeStore {
	return &RedisChallengeStore{client: client, ttl: ttl}
}

type challengeRecord struct {
	ID       string    `json:"id"`
	Address  string    `json:"address"`
	Nonce    string    `json:"nonce"`
	IssuedAt time.Time `json:"issued_at"`
}

// Put stores a challenge keyed by address. SET overwrites any pending
// entry, which gives the per-address last-write-wins semantics.
func (s *RedisChallengeStore) Put(ctx context.Context, challenge *core.Challenge) error {
	payload, err := json.Marshal(challengeRecord{
		ID:       challenge.ID,
		Address:  challenge.Address,
		Nonce:    challenge.Nonce,
		IssuedAt: challenge.IssuedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	if err := s.client.Set(ctx, challengePrefix+challenge.Address, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", core.ErrStoreFailure)
	}
	return nil
}

// Get returns the pending challenge for the address.
func (s *RedisChallengeStore) Get(ctx context.Context, address string) (*core.Challenge, error) {
	payload, err := s.client.Get(ctx, challengePrefix+address).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrChallengeMissing
		}
		return nil, fmt.Errorf("failed to load challenge: %w", core.ErrStoreFailure)
	}

	var record challengeRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}

	return &core.Challenge{
		ID:       record.ID,
		Address:  record.Address,
		Nonce:    record.Nonce,
		IssuedAt: record.IssuedAt,
	}, nil
}

// Delete removes the pending challenge for the address.
func (s *RedisChallengeStore) Delete(ctx context.Context, address string) error {
	if err := s.client.Del(ctx, challengePrefix+address).Err(); err != nil {
		return fmt.Errorf("failed to delete challenge: %w", core.ErrStoreFailure)
	}
	return nil
}

// RedisAccountStore is a Redis implementation of the AccountStore
// interface. Accounts are stored as JSON values with no expiry.
type RedisAccountStore struct {
	client *redis.Client
}

// NewRedisAccountStore creates a new Redis account store.
func NewRedisAccountStore(client *redis.Client) ports.AccountStore {
	return &RedisAccountStore{client: client}
}

// Get returns the account for the address, or nil if none exists.
func (s *RedisAccountStore) Get(ctx context.Context, address string) (*core.Account, error) {
	payload, err := s.client.Get(ctx, accountPrefix+address).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load account: %w", core.ErrStoreFailure)
	}

	var account core.Account
	if err := json.Unmarshal(payload, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}

// Upsert writes the account record.
func (s *RedisAccountStore) Upsert(ctx context.Context, account *core.Account) error {
	payload, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	if err := s.client.Set(ctx, accountPrefix+account.Address, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store account: %w", core.ErrStoreFailure)
	}
	return nil
}

// List returns all account records by scanning the account keyspace.
func (s *RedisAccountStore) List(ctx context.Context) ([]*core.Account, error) {
	var accounts []*core.Account

	iter := s.client.Scan(ctx, 0, accountPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		payload, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to load account: %w", core.ErrStoreFailure)
		}

		var account core.Account
		if err := json.Unmarshal(payload, &account); err != nil {
			return nil, fmt.Errorf("failed to unmarshal account: %w", err)
		}
		accounts = append(accounts, &account)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", core.ErrStoreFailure)
	}

	return accounts, nil
}
