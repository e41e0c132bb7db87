package teos

import (
	"context"
	"fmt"
	"io"
)

// NewPSKBase encrypts plaintext with AES-256-GCM under key using a fresh
// random nonce and returns the unsigned base envelope.
func (e *Engine) NewPSKBase(ctx context.Context, p AADParams, key, plaintext []byte) (*BaseTEOS, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	aad, err := e.newAAD(p)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(e.rand, nonce); err != nil {
		return nil, constructionError("nonce", err)
	}

	sealed, err := Encrypt(AlgorithmAESGCM, key, nonce, plaintext)
	if err != nil {
		return nil, constructionError("encrypt", err)
	}
	ciphertext, tag, err := SplitTag(sealed)
	if err != nil {
		return nil, constructionError("split", err)
	}

	return &BaseTEOS{
		Type:       TypeTag,
		Version:    Version,
		Algorithm:  AlgorithmAESGCM,
		AAD:        aad,
		Nonce:      nonce,
		Tag:        tag,
		Ciphertext: ciphertext,
	}, nil
}

// NewMLSBase wraps a ChaCha20-Poly1305 ciphertext||tag produced by an MLS
// group session under nonce. Nothing is encrypted here.
func (e *Engine) NewMLSBase(ctx context.Context, p AADParams, nonce, sealed []byte) (*BaseTEOS, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, constructionError("nonce",
			fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), NonceSize))
	}
	ciphertext, tag, err := SplitTag(sealed)
	if err != nil {
		return nil, constructionError("split", err)
	}
	aad, err := e.newAAD(p)
	if err != nil {
		return nil, err
	}

	return &BaseTEOS{
		Type:       TypeTag,
		Version:    Version,
		Algorithm:  AlgorithmChaCha20Poly1305,
		AAD:        aad,
		Nonce:      own(nonce),
		Tag:        tag,
		Ciphertext: ciphertext,
	}, nil
}

func (e *Engine) newAAD(p AADParams) (AAD, error) {
	id, err := e.newID()
	if err != nil {
		return AAD{}, constructionError("identifier", err)
	}
	scopes := make([]string, len(p.Scopes))
	copy(scopes, p.Scopes)
	return AAD{
		Identifier:      id,
		ContextID:       p.ContextID,
		EpochID:         p.EpochID,
		SenderClientID:  p.SenderClientID,
		MessageSequence: p.MessageSequence,
		Scopes:          scopes,
		Timestamp:       e.now().UnixMilli(),
	}, nil
}
