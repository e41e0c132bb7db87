package teos

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// newAEAD returns the AEAD for alg keyed with key.
func newAEAD(alg Algorithm, key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}
	switch alg {
	case AlgorithmAESGCM:
		c, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(c)
	case AlgorithmChaCha20Poly1305:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
}

// Encrypt seals plaintext with alg and returns ciphertext||tag. The nonce
// must be NonceSize bytes and must never repeat under the same key.
// No associated data is passed to the AEAD; metadata is bound by the
// envelope signature instead.
func Encrypt(alg Algorithm, key, nonce, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(alg, key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), NonceSize)
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext with the detached tag. A wrong key, nonce, tag or
// modified ciphertext returns ErrAuthenticationFailure.
func Decrypt(alg Algorithm, key, nonce, ciphertext, tag []byte) ([]byte, error) {
	aead, err := newAEAD(alg, key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), NonceSize)
	}
	if len(tag) != TagSize {
		return nil, fmt.Errorf("%w: tag is %d bytes", ErrAuthenticationFailure, len(tag))
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, errors.Join(ErrAuthenticationFailure, err)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// SplitTag splits a sealed ciphertext||tag buffer into fresh ciphertext and
// tag slices. Neither result aliases sealed.
func SplitTag(sealed []byte) (ciphertext, tag []byte, err error) {
	if len(sealed) < TagSize {
		return nil, nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrCiphertextTooShort, len(sealed), TagSize)
	}
	n := len(sealed) - TagSize
	ciphertext = own(sealed[:n])
	tag = own(sealed[n:])
	return ciphertext, tag, nil
}

// own returns a copy of b. The result is never nil.
func own(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ownOptional returns a copy of b, keeping nil as nil.
func ownOptional(b []byte) []byte {
	if b == nil {
		return nil
	}
	return own(b)
}
