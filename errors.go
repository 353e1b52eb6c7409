package chatgpt

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var (
	// ErrStreamClosed is returned when a streamed request ends because of a
	// failure before the completion was resolved.
	ErrStreamClosed = errors.New("request closed before completion")

	// ErrNotEventStream is returned by streaming calls answered with a JSON
	// document instead of an event stream, as some proxies do.
	ErrNotEventStream = errors.New("response is not an event stream")

	// ErrMissingFile is returned by multipart requests that need a file but
	// were not given one.
	ErrMissingFile = errors.New("missing file")
)

// APIError is returned for every response with a non-2xx status code, and for
// error events received on a stream.
//
// https://platform.openai.com/docs/guides/error-codes/api-errors
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Param      string
	Code       string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unexpected status code: %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Code != "" {
		b.WriteString(": ")
		b.WriteString(e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// IsAPIError reports whether err is, or wraps, an *APIError with the given
// status code. A zero code matches any status.
func IsAPIError(err error, code int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return code == 0 || apiErr.StatusCode == code
}

// newAPIError builds an APIError from a response body. The body is expected
// to hold the {"error": {...}} envelope; anything else becomes the message.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}

	env := gjson.GetBytes(body, "error")
	switch {
	case env.IsObject():
		e.Message = env.Get("message").String()
		e.Type = env.Get("type").String()
		e.Param = env.Get("param").String()
		e.Code = env.Get("code").String()
	case env.Type == gjson.String:
		e.Message = env.String()
	default:
		e.Message = strings.TrimSpace(string(body))
	}

	return e
}

// streamClosed marks err as the reason a stream ended before completion.
// Both ErrStreamClosed and err remain visible to errors.Is and errors.As.
func streamClosed(err error) error {
	return fmt.Errorf("%w: %w", ErrStreamClosed, err)
}
