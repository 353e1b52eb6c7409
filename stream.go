package chatgpt

import (
	"bytes"
	"encoding/json"
	"iter"
	"net/http"

	"github.com/openai/openai-go/packages/ssestream"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// doneToken is the data payload that ends an event stream.
var doneToken = []byte("[DONE]")

// Stream is a server-sent event stream of decoded API responses.
//
// Use it like a bufio.Scanner:
//
//	defer stream.Close()
//	for stream.Next() {
//		chunk := stream.Current()
//		...
//	}
//	if err := stream.Err(); err != nil {
//		...
//	}
//
// The stream ends when the server sends "data: [DONE]", closes the
// connection, or reports an error event.
type Stream[T any] struct {
	decoder ssestream.Decoder
	status  int
	current T
	err     error
	done    bool
	closed  bool
}

func newStream[T any](resp *http.Response) *Stream[T] {
	return &Stream[T]{
		decoder: ssestream.NewDecoder(resp),
		status:  resp.StatusCode,
	}
}

// Next advances to the next event. It returns false at the end of the stream
// or on error.
func (s *Stream[T]) Next() bool {
	if s.err != nil || s.done || s.closed {
		return false
	}

	for s.decoder.Next() {
		ev := s.decoder.Event()

		data := bytes.TrimSpace(ev.Data)
		if len(data) == 0 {
			continue
		}

		if bytes.EqualFold(data, doneToken) {
			s.done = true
			return false
		}

		if ev.Type == "error" || gjson.GetBytes(data, "error").IsObject() {
			s.err = newAPIError(s.status, data)
			return false
		}

		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			s.err = errors.Wrap(err, "decode stream event")
			return false
		}

		s.current = v
		return true
	}

	if err := s.decoder.Err(); err != nil {
		s.err = errors.Wrap(err, "read stream")
	}
	s.done = true
	return false
}

// Current returns the most recently decoded event.
func (s *Stream[T]) Current() T {
	return s.current
}

// Err returns the error that stopped the stream, if any. It is nil after a
// clean end, including "[DONE]".
func (s *Stream[T]) Err() error {
	return s.err
}

// Close releases the underlying connection. It is safe to call more than
// once.
func (s *Stream[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.decoder.Close()
}

// All returns an iterator over the remaining events. A stream error is
// yielded once as the final pair. The stream is closed when iteration stops.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer s.Close()

		for s.Next() {
			if !yield(s.current, nil) {
				return
			}
		}

		if err := s.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// streamBody encodes a request for a streaming call. The "stream" field is
// always set to true, whatever the request said.
func streamBody(in any) ([]byte, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "encode stream request")
	}

	b, err = sjson.SetBytes(b, "stream", true)
	if err != nil {
		return nil, errors.Wrap(err, "set stream field")
	}
	return b, nil
}
