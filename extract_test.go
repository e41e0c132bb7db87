package teos

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
)

type greeting struct {
	Message string `msgpack:"message"`
	Count   int    `msgpack:"count"`
	Nested  struct {
		Active bool `msgpack:"active"`
	} `msgpack:"nested"`
}

type status struct {
	Status string `msgpack:"status"`
	Items  []int  `msgpack:"items"`
}

func TestSealPSKExtract(t *testing.T) {
	pub, priv := newTestKeyPair(t)
	eng := newTestEngine()
	psk := testPSK(t, 1)

	in := greeting{Message: "hello world", Count: 5}
	in.Nested.Active = true
	payload, err := EncodePayload(in)
	if err != nil {
		t.Fatalf("EncodePayload() error = %v", err)
	}

	sealed, err := eng.SealPSK(t.Context(), testParams(), psk, priv, payload)
	if err != nil {
		t.Fatalf("SealPSK() error = %v", err)
	}

	t.Run("Shape", func(t *testing.T) {
		if sealed.Type != TypeTag || sealed.Version != Version {
			t.Errorf("type/version = %q/%q", sealed.Type, sealed.Version)
		}
		if sealed.Algorithm != AlgorithmAESGCM {
			t.Errorf("Algorithm = %q, want %q", sealed.Algorithm, AlgorithmAESGCM)
		}
		if len(sealed.Nonce) != NonceSize || len(sealed.Tag) != TagSize {
			t.Errorf("nonce/tag = %d/%d bytes", len(sealed.Nonce), len(sealed.Tag))
		}
		if len(sealed.Ciphertext) != len(payload) {
			t.Errorf("len(Ciphertext) = %d, want %d", len(sealed.Ciphertext), len(payload))
		}
		if sealed.Mode != ModePSK {
			t.Errorf("Mode = %q, want %q", sealed.Mode, ModePSK)
		}
		env, ok := sealed.Envelope.(*PSKEnvelope)
		if !ok {
			t.Fatalf("Envelope is %T, want *PSKEnvelope", sealed.Envelope)
		}
		if env.Suite != SuitePSK || env.PSKID != "your-psk-id" || env.PSKGeneration != 1 {
			t.Errorf("envelope = %+v", env)
		}
		if len(env.Auth.Signature) != SignatureSize {
			t.Errorf("len(Signature) = %d, want %d", len(env.Auth.Signature), SignatureSize)
		}
		if env.Auth.KeyID != KeyID(pub) {
			t.Errorf("KeyID = %q, want %q", env.Auth.KeyID, KeyID(pub))
		}
		embedded, err := ImportPublicKey(env.Auth.PublicKey)
		if err != nil {
			t.Fatalf("ImportPublicKey() error = %v", err)
		}
		if !bytes.Equal(embedded, pub) {
			t.Error("embedded public key does not match the signer")
		}
	})

	t.Run("ExtractInto", func(t *testing.T) {
		var out greeting
		if err := eng.ExtractInto(t.Context(), sealed, psk.Key, pub, &out); err != nil {
			t.Fatalf("ExtractInto() error = %v", err)
		}
		if out != in {
			t.Errorf("ExtractInto() = %+v, want %+v", out, in)
		}
	})

	t.Run("ExtractSerialized", func(t *testing.T) {
		blob, err := Serialize(sealed)
		if err != nil {
			t.Fatalf("Serialize() error = %v", err)
		}
		var out greeting
		if err := eng.ExtractSerialized(t.Context(), blob, psk.Key, pub, &out); err != nil {
			t.Fatalf("ExtractSerialized() error = %v", err)
		}
		if out != in {
			t.Errorf("ExtractSerialized() = %+v, want %+v", out, in)
		}
	})

	t.Run("RederivedKey", func(t *testing.T) {
		again := testPSK(t, 1)
		if _, err := eng.Extract(t.Context(), sealed, again.Key, pub); err != nil {
			t.Errorf("Extract() error = %v", err)
		}
	})

	t.Run("OtherGeneration", func(t *testing.T) {
		next := testPSK(t, 2)
		_, err := eng.Extract(t.Context(), sealed, next.Key, pub)
		if !errors.Is(err, ErrAuthenticationFailure) {
			t.Errorf("Extract() error = %v, want %v", err, ErrAuthenticationFailure)
		}
	})
}

func TestSealMLSExtract(t *testing.T) {
	pub, priv := newTestKeyPair(t)
	eng := newTestEngine()

	// Stand-in for the group session: exported key, nonce and sealed payload.
	key := randomBytes(t, KeySize)
	nonce := randomBytes(t, NonceSize)
	in := status{Status: "ok", Items: []int{1, 2, 3}}
	payload, err := EncodePayload(in)
	if err != nil {
		t.Fatalf("EncodePayload() error = %v", err)
	}
	mlsSealed, err := Encrypt(AlgorithmChaCha20Poly1305, key, nonce, payload)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	sealed, err := eng.SealMLS(t.Context(), testParams(), nonce, mlsSealed, priv)
	if err != nil {
		t.Fatalf("SealMLS() error = %v", err)
	}
	if sealed.Mode != ModeMLS || sealed.Algorithm != AlgorithmChaCha20Poly1305 {
		t.Errorf("mode/algorithm = %q/%q", sealed.Mode, sealed.Algorithm)
	}
	if sealed.Envelope.CipherSuite() != SuiteMLS {
		t.Errorf("CipherSuite() = %q, want %q", sealed.Envelope.CipherSuite(), SuiteMLS)
	}
	if !bytes.Equal(sealed.Nonce, nonce) {
		t.Errorf("Nonce = %x, want %x", sealed.Nonce, nonce)
	}

	var out status
	if err := eng.ExtractInto(t.Context(), sealed, key, pub, &out); err != nil {
		t.Fatalf("ExtractInto() error = %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("ExtractInto() = %+v, want %+v", out, in)
	}
}

func TestExtractFailures(t *testing.T) {
	pub, priv := newTestKeyPair(t)
	eng := newTestEngine()
	psk := testPSK(t, 1)
	payload, _ := EncodePayload(map[string]any{"message": "hello world"})

	seal := func(t *testing.T) *TEOS {
		t.Helper()
		sealed, err := eng.SealPSK(t.Context(), testParams(), psk, priv, payload)
		if err != nil {
			t.Fatalf("SealPSK() error = %v", err)
		}
		return sealed
	}
	signature := func(s *TEOS) []byte {
		return s.Envelope.(*PSKEnvelope).Auth.Signature
	}

	t.Run("TamperedSignature", func(t *testing.T) {
		sealed := seal(t)
		signature(sealed)[0] ^= 0x01
		_, err := eng.Extract(t.Context(), sealed, psk.Key, pub)
		if !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("Extract() error = %v, want %v", err, ErrInvalidSignature)
		}
	})

	t.Run("MalformedSignature", func(t *testing.T) {
		sealed := seal(t)
		env := sealed.Envelope.(*PSKEnvelope)
		env.Auth.Signature = env.Auth.Signature[:SignatureSize-1]
		_, err := eng.Extract(t.Context(), sealed, psk.Key, pub)
		if !errors.Is(err, ErrMalformedSignature) {
			t.Errorf("Extract() error = %v, want %v", err, ErrMalformedSignature)
		}
	})

	t.Run("TamperedCiphertext", func(t *testing.T) {
		sealed := seal(t)
		sealed.Ciphertext[0] ^= 0x01
		_, err := eng.Extract(t.Context(), sealed, psk.Key, pub)
		if !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("Extract() error = %v, want %v", err, ErrInvalidSignature)
		}
	})

	t.Run("WrongVerificationKey", func(t *testing.T) {
		other, _ := newTestKeyPair(t)
		_, err := eng.Extract(t.Context(), seal(t), psk.Key, other)
		if !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("Extract() error = %v, want %v", err, ErrInvalidSignature)
		}
	})

	t.Run("SignatureCheckedFirst", func(t *testing.T) {
		sealed := seal(t)
		signature(sealed)[10] ^= 0x01
		wrong := randomBytes(t, KeySize)
		_, err := eng.Extract(t.Context(), sealed, wrong, pub)
		if !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("Extract() error = %v, want %v", err, ErrInvalidSignature)
		}
	})

	t.Run("WrongSymmetricKey", func(t *testing.T) {
		_, err := eng.Extract(t.Context(), seal(t), randomBytes(t, KeySize), pub)
		if !errors.Is(err, ErrAuthenticationFailure) {
			t.Errorf("Extract() error = %v, want %v", err, ErrAuthenticationFailure)
		}
	})

	t.Run("MalformedPlaintext", func(t *testing.T) {
		sealed, err := eng.SealPSK(t.Context(), testParams(), psk, priv, []byte{0xc1})
		if err != nil {
			t.Fatalf("SealPSK() error = %v", err)
		}
		var out map[string]any
		err = eng.ExtractInto(t.Context(), sealed, psk.Key, pub, &out)
		if !errors.Is(err, ErrMalformedPlaintext) {
			t.Errorf("ExtractInto() error = %v, want %v", err, ErrMalformedPlaintext)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		got, err := eng.Extract(ctx, seal(t), psk.Key, pub)
		if !errors.Is(err, context.Canceled) || got != nil {
			t.Errorf("Extract() = %v, %v, want nil, %v", got, err, context.Canceled)
		}
	})

	t.Run("InputNotMutated", func(t *testing.T) {
		sealed := seal(t)
		before, _ := Serialize(sealed)
		if _, err := eng.Extract(t.Context(), sealed, psk.Key, pub); err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		after, _ := Serialize(sealed)
		if !bytes.Equal(before, after) {
			t.Error("Extract() modified its input")
		}
	})
}

func TestEmptyPlaintext(t *testing.T) {
	pub, priv := newTestKeyPair(t)
	eng := newTestEngine()
	psk := testPSK(t, 1)

	sealed, err := eng.SealPSK(t.Context(), testParams(), psk, priv, []byte{})
	if err != nil {
		t.Fatalf("SealPSK() error = %v", err)
	}
	if len(sealed.Ciphertext) != 0 || len(sealed.Tag) != TagSize || len(sealed.Nonce) != NonceSize {
		t.Fatalf("shape = %d/%d/%d", len(sealed.Ciphertext), len(sealed.Tag), len(sealed.Nonce))
	}

	blob, err := Serialize(sealed)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	restored, err := Deserialize(blob)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	got, err := eng.Extract(t.Context(), restored, psk.Key, pub)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Extract() = %x, want empty", got)
	}

	var out map[string]any
	if err := eng.ExtractInto(t.Context(), restored, psk.Key, pub, &out); !errors.Is(err, ErrMalformedPlaintext) {
		t.Errorf("ExtractInto() error = %v, want %v", err, ErrMalformedPlaintext)
	}
}

type otherEnvelope struct {
	MLSEnvelope
}

func TestAssemble(t *testing.T) {
	pub, priv := newTestKeyPair(t)
	eng := newTestEngine()

	t.Run("CallerEnvelopeUntouched", func(t *testing.T) {
		base, err := eng.NewPSKBase(t.Context(), testParams(), testPSK(t, 4).Key, []byte("x"))
		if err != nil {
			t.Fatalf("NewPSKBase() error = %v", err)
		}
		env := &PSKEnvelope{PSKID: "p", PSKGeneration: 4, Suite: "ignored"}
		sealed, err := eng.Assemble(t.Context(), base, env, priv)
		if err != nil {
			t.Fatalf("Assemble() error = %v", err)
		}
		if env.Auth.Signature != nil || env.Suite != "ignored" {
			t.Error("Assemble() modified the caller's envelope")
		}
		got := sealed.Envelope.(*PSKEnvelope)
		if got.Suite != SuitePSK || got.PSKID != "p" || got.PSKGeneration != 4 {
			t.Errorf("envelope = %+v", got)
		}
		if err := VerifyTEOS(sealed, pub); err != nil {
			t.Errorf("VerifyTEOS() error = %v", err)
		}
	})

	t.Run("UnknownEnvelope", func(t *testing.T) {
		_, err := eng.Assemble(t.Context(), testBase(), &otherEnvelope{}, priv)
		if !errors.Is(err, ErrUnknownMode) || !errors.Is(err, ErrConstruction) {
			t.Errorf("Assemble() error = %v, want %v", err, ErrUnknownMode)
		}
	})

	t.Run("NilBase", func(t *testing.T) {
		_, err := eng.Assemble(t.Context(), nil, &MLSEnvelope{}, priv)
		if !errors.Is(err, ErrConstruction) {
			t.Errorf("Assemble() error = %v, want %v", err, ErrConstruction)
		}
	})
}
