package lookupcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// Shape names the Go type a cached payload decodes into. Build one per value
// kind with ShapeOf and pass it to Fetch.
type Shape[T any] struct {
	name string
}

// ShapeOf returns the decode target for T. The name appears in decode errors;
// an empty name falls back to the Go type name.
func ShapeOf[T any](name string) Shape[T] {
	return Shape[T]{name: name}
}

// Name reports the shape's display name.
func (s Shape[T]) Name() string {
	if s.name != "" {
		return s.name
	}
	return reflect.TypeFor[T]().String()
}

// Decode parses data strictly: unknown object fields, trailing data, an empty
// payload, and null for a non-nillable T all fail with ErrDeserialization.
func (s Shape[T]) Decode(data []byte) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return out, &DecodeError{Shape: s.Name(), Err: errors.New("empty payload")}
	}
	if bytes.Equal(trimmed, []byte("null")) && !nillable[T]() {
		return out, &DecodeError{Shape: s.Name(), Err: errors.New("null payload")}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		var zero T
		return zero, &DecodeError{Shape: s.Name(), Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		var zero T
		return zero, &DecodeError{Shape: s.Name(), Err: errors.New("trailing data after value")}
	}
	return out, nil
}

// Encode renders value as the JSON text stored in the entry store.
//
// Strings must be valid UTF-8: invalid bytes are replaced with U+FFFD without
// an error, so such a value does not read back unchanged. Catalog records are
// decoded from JSON responses and always satisfy this.
func Encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return data, nil
}

func nillable[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return true
	default:
		return false
	}
}
