package teos

const (
	// TypeTag identifies a serialized TEOS structure.
	TypeTag = "torln.teos.v1"
	// DTOTypeTag identifies a TEOS export record.
	DTOTypeTag = "torln.teos.dto.v1"

	// Version of the envelope format written into every base envelope.
	Version = "1.0.0"

	// NonceSize is the AEAD nonce size in bytes.
	NonceSize = 12
	// TagSize is the AEAD authentication tag size in bytes.
	TagSize = 16
	// KeySize is the symmetric key size in bytes for both supported AEADs.
	KeySize = 32
	// SignatureSize is the Ed25519 signature size in bytes.
	SignatureSize = 64
)

// Mode selects how the symmetric key of an envelope was established.
type Mode string

const (
	// ModePSK marks an envelope keyed from a pre-shared secret and generation.
	ModePSK Mode = "psk"
	// ModeMLS marks an envelope keyed from an MLS exported secret.
	ModeMLS Mode = "mls"
)

// Algorithm names the AEAD used for the payload.
type Algorithm string

const (
	AlgorithmAESGCM           Algorithm = "AES-GCM"
	AlgorithmChaCha20Poly1305 Algorithm = "ChaCha20-Poly1305"
)

// Suite is the cipher suite label carried by an envelope.
type Suite string

const (
	SuitePSK Suite = "PSK+AES-256-GCM"
	SuiteMLS Suite = "MLS_128_DHKEMX25519_CHACHA20POLY1305_SHA256_Ed25519"
)

// AADParams are the caller supplied parts of the context metadata.
type AADParams struct {
	ContextID       string
	EpochID         uint64
	SenderClientID  string
	MessageSequence uint64
	Scopes          []string
}

// AAD is the context metadata bound to an envelope by its signature.
// Identifier and Timestamp are always generated by the builder.
type AAD struct {
	Identifier      string   `json:"identifier" msgpack:"identifier" cbor:"identifier"`
	ContextID       string   `json:"contextId" msgpack:"contextId" cbor:"contextId"`
	EpochID         uint64   `json:"epochId" msgpack:"epochId" cbor:"epochId"`
	SenderClientID  string   `json:"senderClientId" msgpack:"senderClientId" cbor:"senderClientId"`
	MessageSequence uint64   `json:"messageSequence" msgpack:"messageSequence" cbor:"messageSequence"`
	Scopes          []string `json:"scopes" msgpack:"scopes" cbor:"scopes"`
	// Timestamp is the creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp" msgpack:"timestamp" cbor:"timestamp"`
}

// BaseTEOS is the unsigned part of an envelope. It is the only part covered
// by the authentication hash.
type BaseTEOS struct {
	Type       string
	Version    string
	Algorithm  Algorithm
	AAD        AAD
	Nonce      []byte
	Tag        []byte
	Ciphertext []byte
}

// clone returns a deep copy of b with non-nil byte and scope slices.
func (b *BaseTEOS) clone() BaseTEOS {
	c := *b
	c.AAD.Scopes = make([]string, len(b.AAD.Scopes))
	copy(c.AAD.Scopes, b.AAD.Scopes)
	c.Nonce = own(b.Nonce)
	c.Tag = own(b.Tag)
	c.Ciphertext = own(b.Ciphertext)
	return c
}

// EnvelopeAuth carries the signature over the authentication hash of the
// base envelope. PublicKey (a JWK) and KeyID identify the signer but are not
// themselves covered by the signature.
type EnvelopeAuth struct {
	Signature []byte
	PublicKey []byte
	KeyID     string
}

// Envelope is the mode specific wrapper around a base envelope. It is
// implemented by *PSKEnvelope and *MLSEnvelope only.
type Envelope interface {
	Mode() Mode
	CipherSuite() Suite
	Authentication() EnvelopeAuth
	envelope()
}

// PSKEnvelope is the envelope of a pre-shared key TEOS. PSKGeneration names
// the derived key generation so keys can ratchet without a format change.
type PSKEnvelope struct {
	Suite         Suite
	Auth          EnvelopeAuth
	PSKID         string
	PSKGeneration uint64
}

func (e *PSKEnvelope) Mode() Mode                   { return ModePSK }
func (e *PSKEnvelope) CipherSuite() Suite           { return e.Suite }
func (e *PSKEnvelope) Authentication() EnvelopeAuth { return e.Auth }
func (e *PSKEnvelope) envelope()                    {}

// MLSEnvelope is the envelope of an MLS TEOS.
type MLSEnvelope struct {
	Suite Suite
	Auth  EnvelopeAuth
}

func (e *MLSEnvelope) Mode() Mode                   { return ModeMLS }
func (e *MLSEnvelope) CipherSuite() Suite           { return e.Suite }
func (e *MLSEnvelope) Authentication() EnvelopeAuth { return e.Auth }
func (e *MLSEnvelope) envelope()                    {}

// TEOS is a complete, signed envelope. Values returned by this package are
// fully valid and are never mutated afterwards.
type TEOS struct {
	BaseTEOS
	Mode     Mode
	Envelope Envelope
}

// ID returns the envelope identifier.
func (t *TEOS) ID() string { return t.AAD.Identifier }

func knownAlgorithm(alg Algorithm) bool {
	return alg == AlgorithmAESGCM || alg == AlgorithmChaCha20Poly1305
}
