package store

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes and decodes entries, so the store does not depend on a
// specific serialization format.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// DefaultCodec is MessagePack with sorted map keys, so equal entries always
// encode to equal bytes.
var DefaultCodec Codec = msgpackCodec{}

type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)

	// Reset clears the flags, set them afterwards
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(b []byte, v any) error {
	return msgpack.Unmarshal(b, v)
}
