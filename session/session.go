package session

import (
	"context"
	"net/http"
	"time"

	"github.com/picatz/chatgpt"
	"github.com/sirupsen/logrus"
)

// Session is the blocking API surface. Every method returns once the
// response is decoded, except the stream methods, which return as soon as
// the stream is open.
type Session interface {
	// Completions asks question with the default completion settings.
	Completions(ctx context.Context, question string) (*chatgpt.CompletionResponse, error)
	Completion(ctx context.Context, req *chatgpt.CompletionRequest) (*chatgpt.CompletionResponse, error)
	CompletionStream(ctx context.Context, req *chatgpt.CompletionRequest, l Listener[chatgpt.CompletionResponse]) (*EventSource, error)

	Chat(ctx context.Context, req *chatgpt.ChatCompletionRequest) (*chatgpt.ChatCompletionResponse, error)
	ChatStream(ctx context.Context, req *chatgpt.ChatCompletionRequest, l Listener[chatgpt.ChatCompletionResponse]) (*EventSource, error)

	// ChatStreamAs streams a chat using another API host and key for this
	// request only. Empty values fall back to the session's configuration.
	ChatStreamAs(ctx context.Context, apiHost, apiKey string, req *chatgpt.ChatCompletionRequest, l Listener[chatgpt.ChatCompletionResponse]) (*EventSource, error)

	// ChatText streams a chat and resolves the future with the reassembled
	// reply text.
	ChatText(ctx context.Context, req *chatgpt.ChatCompletionRequest) *Future[string]

	Edit(ctx context.Context, req *chatgpt.EditRequest) (*chatgpt.EditResponse, error)

	GenerateImage(ctx context.Context, prompt string) (*chatgpt.ImageResponse, error)
	GenerateImages(ctx context.Context, req *chatgpt.ImageRequest) (*chatgpt.ImageResponse, error)

	// EditImage edits the PNG at imagePath. maskPath may be empty, and a nil
	// req asks for one 256x256 image URL.
	EditImage(ctx context.Context, imagePath, maskPath string, req *chatgpt.ImageEditRequest) (*chatgpt.ImageResponse, error)

	Embeddings(ctx context.Context, inputs ...string) (*chatgpt.EmbeddingResponse, error)
	EmbeddingsFor(ctx context.Context, req *chatgpt.EmbeddingRequest) (*chatgpt.EmbeddingResponse, error)

	Files(ctx context.Context) (*chatgpt.List[chatgpt.File], error)
	UploadFile(ctx context.Context, path string) (*chatgpt.File, error)
	UploadFileFor(ctx context.Context, purpose, path string) (*chatgpt.File, error)
	DeleteFile(ctx context.Context, id string) (*chatgpt.DeleteFileResponse, error)
	FileInfo(ctx context.Context, id string) (*chatgpt.File, error)

	Transcribe(ctx context.Context, path string, req *chatgpt.TranscriptionRequest) (*chatgpt.WhisperResponse, error)
	Translate(ctx context.Context, path string, req *chatgpt.TranslationRequest) (*chatgpt.WhisperResponse, error)

	Subscription(ctx context.Context) (*chatgpt.Subscription, error)
	BillingUsage(ctx context.Context, start, end time.Time) (*chatgpt.BillingUsage, error)
}

// Configuration holds what a Factory needs to build sessions.
type Configuration struct {
	// APIHost defaults to chatgpt.DefaultBaseURL.
	APIHost string

	// APIKey is required.
	APIKey string

	Organization string

	// HTTPClient, when set, takes precedence over Timeout.
	HTTPClient *http.Client

	// Timeout defaults to chatgpt.DefaultTimeout.
	Timeout time.Duration

	Logger logrus.FieldLogger
}

// Factory opens sessions sharing one configuration.
type Factory struct {
	config Configuration
}

// NewFactory returns a factory for cfg.
func NewFactory(cfg Configuration) *Factory {
	return &Factory{config: cfg}
}

// Open returns a new session.
func (f *Factory) Open() Session {
	cfg := f.config

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = chatgpt.DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	opts := []chatgpt.ClientOption{
		chatgpt.WithBaseURL(cfg.APIHost),
		chatgpt.WithHTTPClient(httpClient),
		chatgpt.WithOrganization(cfg.Organization),
	}
	if cfg.Logger != nil {
		opts = append(opts, chatgpt.WithLogger(cfg.Logger))
	}

	return New(chatgpt.NewClient(cfg.APIKey, opts...))
}

// New returns a session backed by an existing client.
func New(client *chatgpt.Client) Session {
	return &defaultSession{client: client}
}
