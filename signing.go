package teos

import (
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/ed25519"
)

type (
	// PublicKey is an Ed25519 verification key.
	PublicKey = ed25519.PublicKey
	// PrivateKey is an Ed25519 signing key (seed followed by public key).
	PrivateKey = ed25519.PrivateKey
)

const (
	// SeedSize is the size of an Ed25519 private key seed.
	SeedSize = ed25519.SeedSize
	// PublicKeySize is the size of an Ed25519 public key.
	PublicKeySize = ed25519.PublicKeySize
)

// GenerateKeyPair returns a fresh signing key pair drawn from r.
func GenerateKeyPair(r io.Reader) (PublicKey, PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return pub, priv, nil
}

// NewKeyFromSeed derives a signing key from a SeedSize byte seed.
func NewKeyFromSeed(seed []byte) (PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed is %d bytes, want %d", ErrInvalidPrivateKey, len(seed), SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// publicFromPrivate returns the public half of priv.
func publicFromPrivate(priv PrivateKey) PublicKey {
	return PublicKey(priv[SeedSize:])
}

// Sign signs msg with priv.
func Sign(priv PrivateKey, msg []byte) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidPrivateKey, len(priv), ed25519.PrivateKeySize)
	}
	return ed25519.Sign(priv, msg), nil
}

// Verify reports whether sig is a valid signature of msg by pub.
// A signature that is not SignatureSize bytes returns ErrMalformedSignature
// without attempting verification. A well-formed signature that does not
// match returns false and no error.
func Verify(pub PublicKey, msg, sig []byte) (bool, error) {
	if len(sig) != SignatureSize {
		return false, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedSignature, len(sig), SignatureSize)
	}
	if len(pub) != ed25519.PublicKeySize {
		return false, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPublicKey, len(pub), ed25519.PublicKeySize)
	}
	return ed25519.Verify(pub, msg, sig), nil
}
