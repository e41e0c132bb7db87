package teos

import (
	"errors"
	"testing"
)

func TestPayload(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		in := status{Status: "ok", Items: []int{1, 2, 3}}
		data, err := EncodePayload(in)
		if err != nil {
			t.Fatalf("EncodePayload() error = %v", err)
		}
		var out status
		if err := DecodePayload(data, &out); err != nil {
			t.Fatalf("DecodePayload() error = %v", err)
		}
		if out.Status != in.Status || len(out.Items) != 3 || out.Items[2] != 3 {
			t.Errorf("DecodePayload() = %+v, want %+v", out, in)
		}
	})

	t.Run("CompactInts", func(t *testing.T) {
		data, err := EncodePayload(uint64(5))
		if err != nil {
			t.Fatalf("EncodePayload() error = %v", err)
		}
		if len(data) != 1 || data[0] != 0x05 {
			t.Errorf("EncodePayload(5) = %x, want 05", data)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, data := range [][]byte{nil, {0xc1}} {
			var out map[string]any
			if err := DecodePayload(data, &out); !errors.Is(err, ErrMalformedPlaintext) {
				t.Errorf("DecodePayload(%x) error = %v, want %v", data, err, ErrMalformedPlaintext)
			}
		}
	})

	t.Run("Unencodable", func(t *testing.T) {
		if _, err := EncodePayload(make(chan int)); err == nil {
			t.Error("EncodePayload() error = nil, wantErr")
		}
	})
}
