package history

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Codec encodes keys and values for backends that store bytes. Key
// encodings must sort in the same order as the keys they encode.
type Codec[K, V any] interface {
	EncodeKey(K) ([]byte, error)
	DecodeKey([]byte) (K, error)
	EncodeValue(V) ([]byte, error)
	DecodeValue([]byte) (V, error)
}

var _ Codec[string, any] = (*JSONCodec[any])(nil)

// JSONCodec stores string keys as raw bytes and values as JSON.
type JSONCodec[V any] struct{}

func (JSONCodec[V]) EncodeKey(key string) ([]byte, error) {
	return []byte(key), nil
}

func (JSONCodec[V]) DecodeKey(data []byte) (string, error) {
	return string(data), nil
}

func (JSONCodec[V]) EncodeValue(value V) ([]byte, error) {
	b, err := json.Marshal(value)
	return b, errors.Wrap(err, "encode value")
}

func (JSONCodec[V]) DecodeValue(data []byte) (V, error) {
	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		return value, errors.Wrap(err, "decode value")
	}
	return value, nil
}
