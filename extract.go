package teos

import (
	"context"
	"errors"
	"fmt"
)

// Extract verifies the signature of t against pub and decrypts its payload
// with key. pub must come from the caller's own trust store; the key
// embedded in the envelope is never used.
//
// The first failing stage determines the error: ErrMalformedSignature,
// ErrInvalidSignature, then ErrAuthenticationFailure. No plaintext is
// returned on failure and t is not modified.
func (e *Engine) Extract(ctx context.Context, t *TEOS, key []byte, pub PublicKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: nil envelope", ErrUnrecognizedFormat)
	}

	if err := VerifyTEOS(t, pub); err != nil {
		if errors.Is(err, ErrInvalidSignature) || errors.Is(err, ErrMalformedSignature) {
			e.log.WarnContext(ctx, "rejected envelope signature",
				"id", t.ID(), "mode", t.Mode, "key_id", KeyID(pub), "error", err)
		}
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plaintext, err := Decrypt(t.Algorithm, key, t.Nonce, t.Ciphertext, t.Tag)
	if err != nil {
		return nil, err
	}
	e.log.DebugContext(ctx, "extracted envelope",
		"id", t.ID(), "mode", t.Mode, "plaintext_len", len(plaintext))
	return plaintext, nil
}

// ExtractInto runs Extract and decodes the MessagePack payload into v.
// A payload that cannot be decoded returns ErrMalformedPlaintext.
func (e *Engine) ExtractInto(ctx context.Context, t *TEOS, key []byte, pub PublicKey, v any) error {
	plaintext, err := e.Extract(ctx, t, key, pub)
	if err != nil {
		return err
	}
	return DecodePayload(plaintext, v)
}

// ExtractSerialized deserializes data and runs ExtractInto on the result.
func (e *Engine) ExtractSerialized(ctx context.Context, data, key []byte, pub PublicKey, v any) error {
	t, err := Deserialize(data)
	if err != nil {
		return err
	}
	return e.ExtractInto(ctx, t, key, pub, v)
}
