// Package signup holds account-creation requests awaiting email validation.
// Pending records live in Redis under a per-record TTL; an unconsumed request
// silently expires and the signup must be re-initiated.
package signup

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const tokenLength = 32

// PendingSignup is the state parked between the validation mail going out and
// the user proving control of the mailbox.
type PendingSignup struct {
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	HashedPassword  string `json:"hashed_password"`
	ValidationToken string `json:"validation_token"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Put parks a pending signup under its validation token.
func (s *Store) Put(ctx context.Context, pending PendingSignup) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(pending.ValidationToken), payload, s.ttl).Err()
}

// Take consumes the pending signup for a validation token. The record is
// deleted on read, so a token works exactly once.
func (s *Store) Take(ctx context.Context, validationToken string) (PendingSignup, bool, error) {
	payload, err := s.client.Get(ctx, s.key(validationToken)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return PendingSignup{}, false, nil
		}
		return PendingSignup{}, false, err
	}

	if err := s.client.Del(ctx, s.key(validationToken)).Err(); err != nil {
		return PendingSignup{}, false, err
	}

	var pending PendingSignup
	if err := json.Unmarshal(payload, &pending); err != nil {
		return PendingSignup{}, false, err
	}
	return pending, true, nil
}

func (s *Store) key(validationToken string) string {
	return "signup:token:" + validationToken
}

// NewValidationToken draws a 32-character token from [A-Za-z0-9].
func NewValidationToken() (string, error) {
	token := make([]byte, tokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range token {
		index, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		token[i] = tokenAlphabet[index.Int64()]
	}
	return string(token), nil
}
