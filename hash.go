package teos

import (
	"crypto/sha256"
	"fmt"
)

// hashInput is the exact set of fields covered by the authentication hash.
// Mode and envelope are deliberately absent.
type hashInput struct {
	Type       string    `cbor:"type"`
	Version    string    `cbor:"version"`
	Algorithm  Algorithm `cbor:"algorithm"`
	AAD        AAD       `cbor:"aad"`
	Nonce      []byte    `cbor:"nonce"`
	Tag        []byte    `cbor:"tag"`
	Ciphertext []byte    `cbor:"ciphertext"`
}

// HashBase returns the SHA-256 digest of the canonical encoding of the base
// envelope fields. The type field is always TypeTag regardless of b.Type.
func HashBase(b *BaseTEOS) ([]byte, error) {
	aad := b.AAD
	if aad.Scopes == nil {
		aad.Scopes = []string{}
	}
	in := hashInput{
		Type:       TypeTag,
		Version:    b.Version,
		Algorithm:  b.Algorithm,
		AAD:        aad,
		Nonce:      nonNil(b.Nonce),
		Tag:        nonNil(b.Tag),
		Ciphertext: nonNil(b.Ciphertext),
	}
	data, err := Canonicalize(in)
	if err != nil {
		return nil, fmt.Errorf("canonicalize base: %w", err)
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}

// VerifyTEOS checks the envelope signature of t against pub. It returns
// ErrMalformedSignature for a signature of the wrong size and
// ErrInvalidSignature when the signature does not match.
func VerifyTEOS(t *TEOS, pub PublicKey) error {
	if t == nil || t.Envelope == nil {
		return fmt.Errorf("%w: missing envelope", ErrUnrecognizedFormat)
	}
	digest, err := HashBase(&t.BaseTEOS)
	if err != nil {
		return err
	}
	ok, err := Verify(pub, digest, t.Envelope.Authentication().Signature)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidSignature
	}
	return nil
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
