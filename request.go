package chatgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// maxErrorBody bounds how much of a failed response is read into an APIError.
const maxErrorBody = 1 << 20

// RequestOption overrides client settings for a single call.
type RequestOption func(*requestConfig)

type requestConfig struct {
	apiKey  string
	baseURL string
	header  http.Header
}

// WithRequestAPIKey uses the given API key instead of the client's for one
// call.
func WithRequestAPIKey(key string) RequestOption {
	return func(rc *requestConfig) {
		rc.apiKey = key
	}
}

// WithRequestBaseURL sends one call to a different API host.
func WithRequestBaseURL(baseURL string) RequestOption {
	return func(rc *requestConfig) {
		if baseURL != "" {
			rc.baseURL = normalizeBaseURL(baseURL)
		}
	}
}

// WithRequestHeader sets an extra header on one call.
func WithRequestHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.header.Set(key, value)
	}
}

// call is everything needed to send one request along a route.
type call struct {
	route       route
	params      map[string]string
	query       url.Values
	body        io.Reader
	contentType string
	accept      string
}

func (c *Client) newRequest(ctx context.Context, cl call, opts []RequestOption) (*http.Request, error) {
	rc := requestConfig{
		apiKey:  c.APIKey,
		baseURL: c.BaseURL,
		header:  http.Header{},
	}
	for _, opt := range opts {
		opt(&rc)
	}

	u := strings.TrimSuffix(rc.baseURL, "/") + "/" + cl.route.expand(cl.params)
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	r, err := http.NewRequestWithContext(ctx, cl.route.method, u, cl.body)
	if err != nil {
		return nil, errors.Wrapf(err, "build request %s", cl.route)
	}

	r.Header.Set("Authorization", "Bearer "+rc.apiKey)

	if c.Organization != "" {
		r.Header.Set("OpenAI-Organization", c.Organization)
	}

	if c.UserAgent != "" {
		r.Header.Set("User-Agent", c.UserAgent)
	}

	if cl.contentType != "" {
		r.Header.Set("Content-Type", cl.contentType)
	}

	if cl.accept != "" {
		r.Header.Set("Accept", cl.accept)
	}

	for k, vs := range rc.header {
		r.Header[k] = vs
	}

	return r, nil
}

// send executes the call and returns the response when it has a 2xx status.
// Any other status is read into an *APIError and the body is closed. The
// caller owns the body of a successful response.
func (c *Client) send(ctx context.Context, cl call, opts ...RequestOption) (*http.Response, error) {
	r, err := c.newRequest(ctx, cl, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(r)

	log := c.Logger.WithFields(logrus.Fields{
		"method":  r.Method,
		"path":    r.URL.Path,
		"elapsed": time.Since(start),
	})

	if err != nil {
		log.WithError(err).Debug("request failed")
		return nil, errors.Wrapf(err, "%s", cl.route)
	}

	log = log.WithField("status", resp.StatusCode)
	log.Debug("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := newAPIError(resp.StatusCode, body)

		log.WithField("type", apiErr.Type).Warn(apiErr.Message)
		return nil, apiErr
	}

	return resp, nil
}

// do sends a call and decodes the JSON response into out. A nil out discards
// the body.
func (c *Client) do(ctx context.Context, cl call, out any, opts ...RequestOption) error {
	resp, err := c.send(ctx, cl, opts...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", cl.route)
	}

	return nil
}

// doJSON marshals in as the request body of rt and decodes the reply into out.
func (c *Client) doJSON(ctx context.Context, rt route, in, out any, opts ...RequestOption) error {
	b, err := json.Marshal(in)
	if err != nil {
		return errors.Wrapf(err, "encode %s request", rt)
	}

	return c.do(ctx, call{
		route:       rt,
		body:        bytes.NewReader(b),
		contentType: "application/json",
	}, out, opts...)
}

// stream posts a JSON body and returns the open event stream response. A
// JSON reply is read and returned as an *APIError when it holds one, and as
// ErrNotEventStream otherwise.
func (c *Client) stream(ctx context.Context, rt route, body []byte, opts ...RequestOption) (*http.Response, error) {
	resp, err := c.send(ctx, call{
		route:       rt,
		body:        bytes.NewReader(body),
		contentType: "application/json",
		accept:      "text/event-stream",
	}, opts...)
	if err != nil {
		return nil, err
	}

	ct := resp.Header.Get("Content-Type")
	if mt, _, _ := mime.ParseMediaType(ct); mt != "application/json" {
		return resp, nil
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, errors.Wrapf(err, "%s: read response", rt)
	}
	if gjson.GetBytes(b, "error").IsObject() {
		return nil, newAPIError(resp.StatusCode, b)
	}
	return nil, errors.Wrapf(ErrNotEventStream, "%s: content type %s", rt, ct)
}
