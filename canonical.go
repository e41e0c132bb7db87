package teos

import (
	"github.com/fxamacker/cbor/v2"
)

// canonicalEnc encodes with RFC 8949 core deterministic rules: map keys and
// struct fields are sorted bytewise by their encoded form, integers and
// lengths use the shortest form, and indefinite lengths are never emitted.
var canonicalEnc cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.Sort = cbor.SortCoreDeterministic
	var err error
	canonicalEnc, err = opts.EncMode()
	if err != nil {
		panic("failed to initialize canonical CBOR encoding options: " + err.Error())
	}
}

// Canonicalize returns the canonical encoding of v. Semantically identical
// values always produce identical bytes. The output is only ever hashed; it
// is not the wire format.
func Canonicalize(v any) ([]byte, error) {
	return canonicalEnc.Marshal(v)
}
