package core

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"
)

// DecodeAddress decodes a base58 wallet address into an Ed25519 public key.
// A valid address decodes to exactly 32 bytes.
func DecodeAddress(address string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("base58 decode failed: %w", ErrInvalidAddress)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key is %d bytes, want %d: %w", len(decoded), ed25519.PublicKeySize, ErrInvalidAddress)
	}
	return ed25519.PublicKey(decoded), nil
}

// ValidateAddress reports whether address is a well-formed wallet address.
func ValidateAddress(address string) error {
	_, err := DecodeAddress(address)
	return err
}

// DecodeSignature decodes a signature string as sent by wallet clients.
// Clients are inconsistent about encoding, so standard base64 is tried
// first, then raw URL-safe base64, then base58. The base58 alphabet is a
// subset of base64's, so a decode only counts if it yields exactly one
// Ed25519 signature worth of bytes.
func DecodeSignature(signature string) ([]byte, error) {
	decoders := []func(string) ([]byte, error){
		base64.StdEncoding.DecodeString,
		base64.RawURLEncoding.DecodeString,
		base58.Decode,
	}
	for _, decode := range decoders {
		if sig, err := decode(signature); err == nil && len(sig) == ed25519.SignatureSize {
			return sig, nil
		}
	}
	return nil, fmt.Errorf("signature does not decode to %d bytes as base64 or base58: %w", ed25519.SignatureSize, ErrInvalidSignature)
}

// VerifySignature reports whether signature is a valid detached Ed25519
// signature over the UTF-8 bytes of message by the key behind address.
// Any decode failure yields false; the function never panics and is safe
// for concurrent use.
func VerifySignature(address, message, signature string) bool {
	pubKey, err := DecodeAddress(address)
	if err != nil {
		return false
	}
	sig, err := DecodeSignature(signature)
	if err != nil {
		return false
	}
	return ed25519.Verify(pubKey, []byte(message), sig)
}
