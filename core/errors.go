package core

import "errors"

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrChallengeMissing = errors.New("no challenge pending for address")
	ErrChallengeExpired = errors.New("challenge has expired")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token has expired")
	ErrStoreFailure     = errors.New("store operation failed")
)
