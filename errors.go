package teos

import (
	"errors"
	"fmt"
)

var (
	// ErrConstruction is matched by every error returned while creating an envelope.
	ErrConstruction = errors.New("teos: construction failed")

	// ErrMalformedSignature is returned when a signature is not SignatureSize
	// bytes long. The verify primitive is never called in that case.
	ErrMalformedSignature = errors.New("teos: malformed signature")

	// ErrInvalidSignature is returned when a well-formed signature does not
	// match the authentication hash. Treat it as evidence of tampering.
	ErrInvalidSignature = errors.New("teos: invalid signature")

	// ErrAuthenticationFailure is returned when the AEAD tag does not verify.
	ErrAuthenticationFailure = errors.New("teos: authentication failure")

	// ErrMalformedPlaintext is returned when a decrypted payload cannot be decoded.
	ErrMalformedPlaintext = errors.New("teos: malformed plaintext")

	// ErrUnrecognizedFormat is returned when serialized bytes are not a TEOS.
	ErrUnrecognizedFormat = errors.New("teos: unrecognized format")

	// ErrInvalidKeySize is returned when a symmetric key is not KeySize bytes.
	ErrInvalidKeySize = errors.New("teos: invalid key size")

	// ErrInvalidNonceSize is returned when a nonce is not NonceSize bytes.
	ErrInvalidNonceSize = errors.New("teos: invalid nonce size")

	// ErrCiphertextTooShort is returned when a sealed buffer cannot hold a tag.
	ErrCiphertextTooShort = errors.New("teos: ciphertext too short")

	// ErrUnsupportedAlgorithm is returned for an AEAD name this package does not implement.
	ErrUnsupportedAlgorithm = errors.New("teos: unsupported algorithm")

	// ErrUnknownMode is returned for an envelope mode other than psk or mls.
	ErrUnknownMode = errors.New("teos: unknown mode")

	// ErrInvalidPrivateKey is returned for a signing key of the wrong size.
	ErrInvalidPrivateKey = errors.New("teos: invalid private key")

	// ErrInvalidPublicKey is returned for a verification key that cannot be used.
	ErrInvalidPublicKey = errors.New("teos: invalid public key")

	// ErrInvalidDTO is returned when an export record is inconsistent.
	ErrInvalidDTO = errors.New("teos: invalid dto")
)

// ConstructionError reports the stage at which envelope creation failed.
type ConstructionError struct {
	// Stage is one of "identifier", "nonce", "encrypt", "split", "hash",
	// "sign", "export-key", "self-check".
	Stage string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("teos: construction failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}

func constructionError(stage string, err error) error {
	return &ConstructionError{Stage: stage, Err: err}
}
