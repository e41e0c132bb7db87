// Package keymaterial turns operator supplied strings into teos keys.
//
// Values are accepted as hex (with or without a 0x prefix) or base64. A value
// starting with "@" names a file whose trimmed contents are used instead.
// Signing keys may also be given as a BIP-39 mnemonic, from which an Ed25519
// seed is derived with HKDF-SHA256.
package keymaterial

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"

	"github.com/torlnapp/teos"
)

const signInfoV1 = "torln.teos/sign/v1"

// ErrEmpty is returned when no key material was supplied.
var ErrEmpty = errors.New("keymaterial: empty value")

// Resolve returns s, or the trimmed contents of the file it names when it
// starts with "@".
func Resolve(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "@") {
		return s, nil
	}
	data, err := os.ReadFile(s[1:])
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ParseBytes decodes hex or base64 encoded bytes.
func ParseBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmpty
	}
	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if b, err := hex.DecodeString(h); err == nil {
		return b, nil
	}
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("keymaterial: %q is neither hex nor base64", abbreviate(s))
}

// SymmetricKey parses a teos.KeySize byte AEAD key.
func SymmetricKey(s string) ([]byte, error) {
	s, err := Resolve(s)
	if err != nil {
		return nil, err
	}
	b, err := ParseBytes(s)
	if err != nil {
		return nil, err
	}
	if len(b) != teos.KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", teos.ErrInvalidKeySize, len(b), teos.KeySize)
	}
	return b, nil
}

// Secret parses a PSK secret. Unlike SymmetricKey any non-empty length is
// accepted; a value that is neither hex nor base64 is used as raw text.
func Secret(s string) ([]byte, error) {
	s, err := Resolve(s)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, ErrEmpty
	}
	if b, err := ParseBytes(s); err == nil {
		return b, nil
	}
	return []byte(s), nil
}

// SigningKey parses an Ed25519 signing key given as a mnemonic, a 32 byte
// seed or a 64 byte private key.
func SigningKey(s string) (teos.PrivateKey, error) {
	s, err := Resolve(s)
	if err != nil {
		return nil, err
	}
	if strings.ContainsAny(s, " \t\n") {
		return SigningKeyFromMnemonic(s)
	}
	b, err := ParseBytes(s)
	if err != nil {
		return nil, err
	}
	switch len(b) {
	case teos.SeedSize:
		return teos.NewKeyFromSeed(b)
	case 2 * teos.SeedSize:
		priv, err := teos.NewKeyFromSeed(b[:teos.SeedSize])
		if err != nil {
			return nil, err
		}
		if string(priv) != string(b) {
			return nil, fmt.Errorf("%w: public half does not match seed", teos.ErrInvalidPrivateKey)
		}
		return priv, nil
	default:
		return nil, fmt.Errorf("%w: %d bytes", teos.ErrInvalidPrivateKey, len(b))
	}
}

// SigningKeyFromMnemonic derives an Ed25519 signing key from a BIP-39
// mnemonic with an empty passphrase.
func SigningKeyFromMnemonic(mnemonic string) (teos.PrivateKey, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if mnemonic == "" {
		return nil, ErrEmpty
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("%w: not a valid BIP-39 mnemonic", teos.ErrInvalidPrivateKey)
	}
	seed := bip39.NewSeed(mnemonic, "")
	sk, err := hkdfExpand32(seed, []byte(signInfoV1))
	if err != nil {
		return nil, err
	}
	return teos.NewKeyFromSeed(sk)
}

// VerifyKey parses an Ed25519 verification key given as a JWK or as 32
// hex or base64 encoded bytes.
func VerifyKey(s string) (teos.PublicKey, error) {
	s, err := Resolve(s)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(s, "{") {
		return teos.ImportPublicKey([]byte(s))
	}
	b, err := ParseBytes(s)
	if err != nil {
		return nil, err
	}
	if len(b) != teos.PublicKeySize {
		return nil, fmt.Errorf("%w: %d bytes", teos.ErrInvalidPublicKey, len(b))
	}
	return teos.PublicKey(b), nil
}

func hkdfExpand32(seed, info []byte) ([]byte, error) {
	rd := hkdf.New(sha256.New, seed, nil, info)
	out := make([]byte, 32)
	if _, err := io.ReadFull(rd, out); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return out, nil
}

func abbreviate(s string) string {
	if len(s) > 12 {
		return s[:12] + "..."
	}
	return s
}
