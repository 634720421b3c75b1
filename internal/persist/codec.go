package persist

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Codec converts a value to and from its stored string form.
type Codec[T any] interface {
	Encode(v T) (string, error)
	Decode(s string) (T, error)
}

// JSON returns a Codec that stores values as JSON.
func JSON[T any]() Codec[T] {
	return jsonCodec[T]{}
}

type jsonCodec[T any] struct{}

func (jsonCodec[T]) Encode(v T) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode value")
	}
	return string(data), nil
}

func (jsonCodec[T]) Decode(s string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return v, errors.Wrap(err, "failed to decode value")
	}
	return v, nil
}

// CodecFunc adapts a pair of functions to a Codec.
type CodecFunc[T any] struct {
	EncodeFunc func(T) (string, error)
	DecodeFunc func(string) (T, error)
}

func (c CodecFunc[T]) Encode(v T) (string, error) { return c.EncodeFunc(v) }

func (c CodecFunc[T]) Decode(s string) (T, error) { return c.DecodeFunc(s) }
