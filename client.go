package chatgpt

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the API host used when none is configured.
const DefaultBaseURL = "https://api.openai.com/"

// DefaultTimeout matches the read timeout long completions need; the API can
// take several minutes before the first byte of a large response.
const DefaultTimeout = 450 * time.Second

const defaultUserAgent = "chatgpt-go"

// Client is a client for the OpenAI API.
//
// Every endpoint is a method on the client. Methods take a context and a
// request value, and return a decoded response or an error. Non-2xx replies
// are returned as *APIError.
//
// https://platform.openai.com/docs/api-reference
type Client struct {
	// APIKey is sent as a bearer token with every request.
	APIKey string

	// BaseURL is the API host, e.g. "https://api.openai.com/". Routes such as
	// "v1/chat/completions" are resolved against it, so proxies that mount the
	// API under a path prefix work as long as the prefix is included here.
	BaseURL string

	// HTTPClient is the HTTP client to use for requests.
	HTTPClient *http.Client

	// Organization is sent in the OpenAI-Organization header when set.
	Organization string

	// UserAgent is sent in the User-Agent header.
	UserAgent string

	// Logger receives a debug entry for every request and a warning for every
	// API error. The default logger discards everything.
	Logger logrus.FieldLogger
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client to use for requests.
//
// If the client is nil, a client with DefaultTimeout is used.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		if c == nil {
			c = &http.Client{Timeout: DefaultTimeout}
		}
		client.HTTPClient = c
	}
}

// WithOrganization sets the organization to use for requests.
//
// https://platform.openai.com/docs/api-reference/authentication
func WithOrganization(org string) ClientOption {
	return func(client *Client) {
		client.Organization = org
	}
}

// WithBaseURL points the client at a different API host, such as a proxy or
// a compatible self-hosted service. An empty value keeps DefaultBaseURL.
func WithBaseURL(baseURL string) ClientOption {
	return func(client *Client) {
		if baseURL != "" {
			client.BaseURL = normalizeBaseURL(baseURL)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger logrus.FieldLogger) ClientOption {
	return func(client *Client) {
		if logger != nil {
			client.Logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(client *Client) {
		client.UserAgent = ua
	}
}

// NewClient returns a new Client with the given API key.
//
// # Example
//
//	c := chatgpt.NewClient(os.Getenv("OPENAI_API_KEY"))
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		UserAgent:  defaultUserAgent,
		Logger:     discardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func normalizeBaseURL(s string) string {
	if !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
