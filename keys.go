package teos

import (
	stded25519 "crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"golang.org/x/crypto/sha3"
)

// keyIDSize is the number of fingerprint bytes kept in a key id.
const keyIDSize = 16

// ExportPublicKey encodes pub as an RFC 8037 OKP JSON Web Key.
func ExportPublicKey(pub PublicKey) ([]byte, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPublicKey, len(pub), ed25519.PublicKeySize)
	}
	key, err := jwk.Import(stded25519.PublicKey(pub))
	if err != nil {
		return nil, fmt.Errorf("import jwk: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, KeyID(pub)); err != nil {
		return nil, fmt.Errorf("set jwk kid: %w", err)
	}
	return json.Marshal(key)
}

// ImportPublicKey parses an Ed25519 JSON Web Key.
func ImportPublicKey(data []byte) (PublicKey, error) {
	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	var raw stded25519.PublicKey
	if err := jwk.Export(key, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPublicKey, len(raw), ed25519.PublicKeySize)
	}
	return PublicKey(raw), nil
}

// KeyID returns the hex encoded, truncated SHA3-256 fingerprint of pub.
func KeyID(pub PublicKey) string {
	sum := sha3.Sum256(pub)
	return hex.EncodeToString(sum[:keyIDSize])
}
