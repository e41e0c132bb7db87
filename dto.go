package teos

import (
	"fmt"
	"time"
)

// DTO is a storage and transport record describing a serialized TEOS.
type DTO struct {
	Type        string    `json:"type" msgpack:"type"`
	ID          string    `json:"id" msgpack:"id"`
	Mode        Mode      `json:"mode" msgpack:"mode"`
	CipherSuite Suite     `json:"ciphersuite" msgpack:"ciphersuite"`
	Blob        []byte    `json:"blob" msgpack:"blob"`
	Timestamp   time.Time `json:"timestamp" msgpack:"timestamp"`
}

// NewDTO serializes t and describes it.
func NewDTO(t *TEOS) (*DTO, error) {
	blob, err := Serialize(t)
	if err != nil {
		return nil, err
	}
	return &DTO{
		Type:        DTOTypeTag,
		ID:          t.ID(),
		Mode:        t.Mode,
		CipherSuite: t.Envelope.CipherSuite(),
		Blob:        blob,
		Timestamp:   time.UnixMilli(t.AAD.Timestamp).UTC(),
	}, nil
}

// Validate checks that d describes the envelope in its blob.
func (d *DTO) Validate() error {
	_, err := d.TEOS()
	return err
}

// TEOS deserializes the blob and returns it when it matches the record.
func (d *DTO) TEOS() (*TEOS, error) {
	if d.Type != DTOTypeTag {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidDTO, d.Type)
	}
	t, err := Deserialize(d.Blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDTO, err)
	}
	switch {
	case t.ID() != d.ID:
		return nil, fmt.Errorf("%w: id %q does not match blob %q", ErrInvalidDTO, d.ID, t.ID())
	case t.Mode != d.Mode:
		return nil, fmt.Errorf("%w: mode %q does not match blob %q", ErrInvalidDTO, d.Mode, t.Mode)
	case t.Envelope.CipherSuite() != d.CipherSuite:
		return nil, fmt.Errorf("%w: suite %q does not match blob %q", ErrInvalidDTO, d.CipherSuite, t.Envelope.CipherSuite())
	case !d.Timestamp.Equal(time.UnixMilli(t.AAD.Timestamp)):
		return nil, fmt.Errorf("%w: timestamp does not match blob", ErrInvalidDTO)
	}
	return t, nil
}
