package teos

import (
	"context"
	"errors"
	"fmt"
)

// PSK names a pre-shared key generation. Key is the symmetric key derived
// for Generation; the engine never derives or stores it.
type PSK struct {
	ID         string
	Generation uint64
	Key        []byte
}

// SealPSK encrypts plaintext under psk.Key and returns a signed PSK envelope.
func (e *Engine) SealPSK(ctx context.Context, p AADParams, psk PSK, signer PrivateKey, plaintext []byte) (*TEOS, error) {
	base, err := e.NewPSKBase(ctx, p, psk.Key, plaintext)
	if err != nil {
		return nil, err
	}
	t, err := e.Assemble(ctx, base, &PSKEnvelope{PSKID: psk.ID, PSKGeneration: psk.Generation}, signer)
	if err != nil {
		return nil, err
	}
	e.log.DebugContext(ctx, "sealed envelope",
		"id", t.ID(), "mode", t.Mode, "psk_id", psk.ID, "generation", psk.Generation,
		"ciphertext_len", len(t.Ciphertext))
	return t, nil
}

// SealMLS wraps an MLS ciphertext||tag and returns a signed MLS envelope.
func (e *Engine) SealMLS(ctx context.Context, p AADParams, nonce, sealed []byte, signer PrivateKey) (*TEOS, error) {
	base, err := e.NewMLSBase(ctx, p, nonce, sealed)
	if err != nil {
		return nil, err
	}
	t, err := e.Assemble(ctx, base, &MLSEnvelope{}, signer)
	if err != nil {
		return nil, err
	}
	e.log.DebugContext(ctx, "sealed envelope",
		"id", t.ID(), "mode", t.Mode, "ciphertext_len", len(t.Ciphertext))
	return t, nil
}

// Assemble signs base and attaches it to a copy of env. The suite and
// authentication of env are set here; only the PSK identity fields of a
// *PSKEnvelope are taken from the caller. The result is verified against
// the signer's public key before it is returned.
func (e *Engine) Assemble(ctx context.Context, base *BaseTEOS, env Envelope, signer PrivateKey) (*TEOS, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if base == nil {
		return nil, constructionError("hash", errors.New("nil base envelope"))
	}

	digest, err := HashBase(base)
	if err != nil {
		return nil, constructionError("hash", err)
	}
	sig, err := Sign(signer, digest)
	if err != nil {
		return nil, constructionError("sign", err)
	}
	pub := publicFromPrivate(signer)
	jwkJSON, err := ExportPublicKey(pub)
	if err != nil {
		return nil, constructionError("export-key", err)
	}
	auth := EnvelopeAuth{
		Signature: sig,
		PublicKey: jwkJSON,
		KeyID:     KeyID(pub),
	}

	t := &TEOS{BaseTEOS: base.clone()}
	switch v := env.(type) {
	case *PSKEnvelope:
		t.Mode = ModePSK
		t.Envelope = &PSKEnvelope{
			Suite:         SuitePSK,
			Auth:          auth,
			PSKID:         v.PSKID,
			PSKGeneration: v.PSKGeneration,
		}
	case *MLSEnvelope:
		t.Mode = ModeMLS
		t.Envelope = &MLSEnvelope{
			Suite: SuiteMLS,
			Auth:  auth,
		}
	default:
		return nil, constructionError("sign", fmt.Errorf("%w: %T", ErrUnknownMode, env))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := VerifyTEOS(t, pub); err != nil {
		return nil, constructionError("self-check", err)
	}
	return t, nil
}
