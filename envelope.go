package teos

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// wireAuth is the serialized form of EnvelopeAuth.
type wireAuth struct {
	Signature []byte `msgpack:"signature"`
	PublicKey []byte `msgpack:"publicKey,omitempty"`
	KeyID     string `msgpack:"keyId,omitempty"`
}

// wireEnvelope is the union of both envelope variants. The PSK fields are
// absent for MLS envelopes.
type wireEnvelope struct {
	Suite         Suite    `msgpack:"suite"`
	Auth          wireAuth `msgpack:"auth"`
	PSKID         *string  `msgpack:"pskId,omitempty"`
	PSKGeneration *uint64  `msgpack:"pskGeneration,omitempty"`
}

// wireTEOS is the serialized form of TEOS: a map keyed by field name with
// byte fields encoded as bin.
type wireTEOS struct {
	Type       string        `msgpack:"type"`
	Version    string        `msgpack:"version"`
	Algorithm  Algorithm     `msgpack:"algorithm"`
	AAD        AAD           `msgpack:"aad"`
	Nonce      []byte        `msgpack:"nonce"`
	Tag        []byte        `msgpack:"tag"`
	Ciphertext []byte        `msgpack:"ciphertext"`
	Mode       Mode          `msgpack:"mode"`
	Envelope   *wireEnvelope `msgpack:"envelope"`
}

func toWire(t *TEOS) (*wireTEOS, error) {
	if t.Envelope == nil {
		return nil, fmt.Errorf("%w: missing envelope", ErrUnknownMode)
	}
	if t.Envelope.Mode() != t.Mode {
		return nil, fmt.Errorf("%w: mode %q does not match envelope %q", ErrUnknownMode, t.Mode, t.Envelope.Mode())
	}
	auth := t.Envelope.Authentication()
	env := &wireEnvelope{
		Suite: t.Envelope.CipherSuite(),
		Auth: wireAuth{
			Signature: auth.Signature,
			PublicKey: auth.PublicKey,
			KeyID:     auth.KeyID,
		},
	}
	switch v := t.Envelope.(type) {
	case *PSKEnvelope:
		id, gen := v.PSKID, v.PSKGeneration
		env.PSKID = &id
		env.PSKGeneration = &gen
	case *MLSEnvelope:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMode, t.Envelope)
	}
	return &wireTEOS{
		Type:       t.Type,
		Version:    t.Version,
		Algorithm:  t.Algorithm,
		AAD:        t.AAD,
		Nonce:      t.Nonce,
		Tag:        t.Tag,
		Ciphertext: nonNil(t.Ciphertext),
		Mode:       t.Mode,
		Envelope:   env,
	}, nil
}

// fromWire validates w and copies it into newly owned storage.
func fromWire(w *wireTEOS) (*TEOS, error) {
	if w.Type != TypeTag {
		return nil, fmt.Errorf("type %q", w.Type)
	}
	if len(w.Nonce) != NonceSize {
		return nil, fmt.Errorf("nonce is %d bytes, want %d", len(w.Nonce), NonceSize)
	}
	if len(w.Tag) != TagSize {
		return nil, fmt.Errorf("tag is %d bytes, want %d", len(w.Tag), TagSize)
	}
	if !knownAlgorithm(w.Algorithm) {
		return nil, fmt.Errorf("algorithm %q", w.Algorithm)
	}
	if w.Envelope == nil {
		return nil, errors.New("missing envelope")
	}

	auth := EnvelopeAuth{
		Signature: own(w.Envelope.Auth.Signature),
		PublicKey: ownOptional(w.Envelope.Auth.PublicKey),
		KeyID:     w.Envelope.Auth.KeyID,
	}

	var env Envelope
	switch w.Mode {
	case ModePSK:
		if w.Envelope.PSKID == nil {
			return nil, errors.New("psk envelope without pskId")
		}
		var gen uint64
		if w.Envelope.PSKGeneration != nil {
			gen = *w.Envelope.PSKGeneration
		}
		env = &PSKEnvelope{
			Suite:         w.Envelope.Suite,
			Auth:          auth,
			PSKID:         *w.Envelope.PSKID,
			PSKGeneration: gen,
		}
	case ModeMLS:
		if w.Envelope.PSKID != nil || w.Envelope.PSKGeneration != nil {
			return nil, errors.New("mls envelope with psk fields")
		}
		env = &MLSEnvelope{
			Suite: w.Envelope.Suite,
			Auth:  auth,
		}
	default:
		return nil, fmt.Errorf("mode %q", w.Mode)
	}

	aad := w.AAD
	aad.Scopes = make([]string, len(w.AAD.Scopes))
	copy(aad.Scopes, w.AAD.Scopes)

	return &TEOS{
		BaseTEOS: BaseTEOS{
			Type:       w.Type,
			Version:    w.Version,
			Algorithm:  w.Algorithm,
			AAD:        aad,
			Nonce:      own(w.Nonce),
			Tag:        own(w.Tag),
			Ciphertext: own(w.Ciphertext),
		},
		Mode:     w.Mode,
		Envelope: env,
	}, nil
}

// Serialize encodes t to its MessagePack wire form.
func Serialize(t *TEOS) ([]byte, error) {
	w, err := toWire(t)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(w); err != nil {
		return nil, fmt.Errorf("encode teos: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a TEOS from its wire form. Any input that is not a
// well-formed TEOS returns ErrUnrecognizedFormat. The result never aliases
// data.
func Deserialize(data []byte) (*TEOS, error) {
	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)
	var w wireTEOS
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrUnrecognizedFormat, r.Len())
	}
	t, err := fromWire(&w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}
	return t, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (t *TEOS) MarshalBinary() ([]byte, error) {
	return Serialize(t)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (t *TEOS) UnmarshalBinary(data []byte) error {
	decoded, err := Deserialize(data)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}
