// Package teos implements TEOS, an authenticated envelope that binds an
// encrypted payload to its context metadata with an Ed25519 signature over
// a canonical hash, and serializes the result as MessagePack.
//
// Two modes exist. PSK envelopes are encrypted here with AES-256-GCM under a
// key derived from a shared secret and a generation counter. MLS envelopes
// wrap a ChaCha20-Poly1305 ciphertext produced by an external MLS group
// session.
//
// Basic usage:
//
//	eng := teos.New()
//	psk, err := teos.DerivePSK(ctx, teos.HKDFKeySchedule{}, "team", secret, 1)
//	if err != nil {
//	    return err
//	}
//	payload, _ := teos.EncodePayload(map[string]any{"message": "hello world"})
//	t, err := eng.SealPSK(ctx, teos.AADParams{ContextID: "room"}, psk, signer, payload)
//	if err != nil {
//	    return err
//	}
//	blob, err := teos.Serialize(t)
//
//	var out map[string]any
//	err = eng.ExtractSerialized(ctx, blob, psk.Key, senderPub, &out)
//
// # Authentication
//
// The signature covers the type, version, algorithm, AAD, nonce, tag and
// ciphertext. The mode and the envelope, including the suite label and the
// PSK generation, are not covered; a receiver must not make trust decisions
// on them. The public key embedded in an envelope is informational and
// extraction always verifies against a key supplied by the caller.
package teos
