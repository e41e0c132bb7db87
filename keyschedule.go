package teos

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DefaultKeyScheduleLabel is the HKDF info label used by HKDFKeySchedule
// when none is set.
const DefaultKeyScheduleLabel = "torln.teos.psk.v1"

// KeySchedule derives the symmetric key for a PSK generation. It must be
// deterministic: the same secret and generation always yield the same key.
type KeySchedule interface {
	DeriveKey(ctx context.Context, secret []byte, generation uint64) ([]byte, error)
}

// KeyScheduleFunc adapts a function to KeySchedule.
type KeyScheduleFunc func(ctx context.Context, secret []byte, generation uint64) ([]byte, error)

// DeriveKey calls f.
func (f KeyScheduleFunc) DeriveKey(ctx context.Context, secret []byte, generation uint64) ([]byte, error) {
	return f(ctx, secret, generation)
}

// HKDFKeySchedule derives KeySize byte keys with HKDF-SHA256. The info
// parameter is Label, a zero byte, then the generation as a big endian
// uint64.
type HKDFKeySchedule struct {
	Label string
	Salt  []byte
}

// DeriveKey implements KeySchedule.
func (s HKDFKeySchedule) DeriveKey(ctx context.Context, secret []byte, generation uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty psk secret", ErrInvalidKeySize)
	}
	label := s.Label
	if label == "" {
		label = DefaultKeyScheduleLabel
	}
	info := make([]byte, 0, len(label)+1+8)
	info = append(info, label...)
	info = append(info, 0x00)
	info = binary.BigEndian.AppendUint64(info, generation)

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, s.Salt, info), key); err != nil {
		return nil, fmt.Errorf("derive psk key: %w", err)
	}
	return key, nil
}

// DerivePSK derives the key for generation with ks and returns it as a PSK
// ready for Engine.SealPSK.
func DerivePSK(ctx context.Context, ks KeySchedule, id string, secret []byte, generation uint64) (PSK, error) {
	key, err := ks.DeriveKey(ctx, secret, generation)
	if err != nil {
		return PSK{}, err
	}
	if len(key) != KeySize {
		return PSK{}, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}
	return PSK{ID: id, Generation: generation, Key: key}, nil
}
