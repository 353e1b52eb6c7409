package session

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/picatz/chatgpt"
	"github.com/pkg/errors"
)

type defaultSession struct {
	client *chatgpt.Client
}

var _ Session = (*defaultSession)(nil)

func (s *defaultSession) Completions(ctx context.Context, question string) (*chatgpt.CompletionResponse, error) {
	return s.client.CreateCompletion(ctx, chatgpt.NewCompletionRequest(question))
}

func (s *defaultSession) Completion(ctx context.Context, req *chatgpt.CompletionRequest) (*chatgpt.CompletionResponse, error) {
	return s.client.CreateCompletion(ctx, req)
}

func (s *defaultSession) CompletionStream(ctx context.Context, req *chatgpt.CompletionRequest, l Listener[chatgpt.CompletionResponse]) (*EventSource, error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := s.client.CreateCompletionStream(ctx, req)
	if err != nil {
		cancel()
		return nil, err
	}
	return relay(ctx, cancel, stream, l), nil
}

func (s *defaultSession) Chat(ctx context.Context, req *chatgpt.ChatCompletionRequest) (*chatgpt.ChatCompletionResponse, error) {
	return s.client.CreateChat(ctx, req)
}

func (s *defaultSession) ChatStream(ctx context.Context, req *chatgpt.ChatCompletionRequest, l Listener[chatgpt.ChatCompletionResponse]) (*EventSource, error) {
	return s.chatStream(ctx, req, l)
}

func (s *defaultSession) ChatStreamAs(ctx context.Context, apiHost, apiKey string, req *chatgpt.ChatCompletionRequest, l Listener[chatgpt.ChatCompletionResponse]) (*EventSource, error) {
	var opts []chatgpt.RequestOption
	if apiHost != "" {
		opts = append(opts, chatgpt.WithRequestBaseURL(apiHost))
	}
	if apiKey != "" {
		opts = append(opts, chatgpt.WithRequestAPIKey(apiKey))
	}
	return s.chatStream(ctx, req, l, opts...)
}

func (s *defaultSession) chatStream(ctx context.Context, req *chatgpt.ChatCompletionRequest, l Listener[chatgpt.ChatCompletionResponse], opts ...chatgpt.RequestOption) (*EventSource, error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := s.client.CreateChatStream(ctx, req, opts...)
	if err != nil {
		cancel()
		return nil, err
	}
	return relay(ctx, cancel, stream, l), nil
}

func (s *defaultSession) ChatText(ctx context.Context, req *chatgpt.ChatCompletionRequest) *Future[string] {
	f := newFuture[string]()

	go func() {
		stream, err := s.client.CreateChatStream(ctx, req)
		if err != nil {
			f.resolve("", fmt.Errorf("%w: %w", chatgpt.ErrStreamClosed, err))
			return
		}

		f.resolve(chatgpt.CollectChatStream(ctx, stream))
	}()

	return f
}

func (s *defaultSession) Edit(ctx context.Context, req *chatgpt.EditRequest) (*chatgpt.EditResponse, error) {
	return s.client.CreateEdit(ctx, req)
}

func (s *defaultSession) GenerateImage(ctx context.Context, prompt string) (*chatgpt.ImageResponse, error) {
	return s.client.CreateImage(ctx, chatgpt.NewImageRequest(prompt))
}

func (s *defaultSession) GenerateImages(ctx context.Context, req *chatgpt.ImageRequest) (*chatgpt.ImageResponse, error) {
	return s.client.CreateImage(ctx, req)
}

func (s *defaultSession) EditImage(ctx context.Context, imagePath, maskPath string, req *chatgpt.ImageEditRequest) (*chatgpt.ImageResponse, error) {
	image, err := os.Open(imagePath)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer image.Close()

	r := chatgpt.NewImageEditRequest(image, filepath.Base(imagePath), "")
	if req != nil {
		r.Prompt = req.Prompt
		r.N = cmp.Or(req.N, r.N)
		r.Size = cmp.Or(req.Size, r.Size)
		r.ResponseFormat = cmp.Or(req.ResponseFormat, r.ResponseFormat)
		r.User = req.User
	}

	if maskPath != "" {
		mask, err := os.Open(maskPath)
		if err != nil {
			return nil, errors.Wrap(err, "open mask")
		}
		defer mask.Close()

		r.Mask, r.MaskName = mask, filepath.Base(maskPath)
	}

	return s.client.CreateImageEdit(ctx, r)
}

func (s *defaultSession) Embeddings(ctx context.Context, inputs ...string) (*chatgpt.EmbeddingResponse, error) {
	return s.client.CreateEmbedding(ctx, chatgpt.NewEmbeddingRequest(inputs...))
}

func (s *defaultSession) EmbeddingsFor(ctx context.Context, req *chatgpt.EmbeddingRequest) (*chatgpt.EmbeddingResponse, error) {
	return s.client.CreateEmbedding(ctx, req)
}

func (s *defaultSession) Files(ctx context.Context) (*chatgpt.List[chatgpt.File], error) {
	return s.client.ListFiles(ctx)
}

func (s *defaultSession) UploadFile(ctx context.Context, path string) (*chatgpt.File, error) {
	return s.UploadFileFor(ctx, chatgpt.PurposeFineTune, path)
}

func (s *defaultSession) UploadFileFor(ctx context.Context, purpose, path string) (*chatgpt.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer f.Close()

	return s.client.UploadFile(ctx, &chatgpt.UploadFileRequest{
		Name:    filepath.Base(path),
		Purpose: purpose,
		Body:    f,
	})
}

func (s *defaultSession) DeleteFile(ctx context.Context, id string) (*chatgpt.DeleteFileResponse, error) {
	return s.client.DeleteFile(ctx, id)
}

func (s *defaultSession) FileInfo(ctx context.Context, id string) (*chatgpt.File, error) {
	return s.client.GetFile(ctx, id)
}

func (s *defaultSession) Transcribe(ctx context.Context, path string, req *chatgpt.TranscriptionRequest) (*chatgpt.WhisperResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open audio")
	}
	defer f.Close()

	r := chatgpt.NewTranscriptionRequest(f, filepath.Base(path))
	if req != nil {
		r.Model = req.Model
		r.Language = req.Language
		r.Prompt = req.Prompt
		r.ResponseFormat = req.ResponseFormat
		r.Temperature = req.Temperature
	}
	return s.client.CreateTranscription(ctx, r)
}

func (s *defaultSession) Translate(ctx context.Context, path string, req *chatgpt.TranslationRequest) (*chatgpt.WhisperResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open audio")
	}
	defer f.Close()

	r := chatgpt.NewTranslationRequest(f, filepath.Base(path))
	if req != nil {
		r.Model = req.Model
		r.Prompt = req.Prompt
		r.ResponseFormat = req.ResponseFormat
		r.Temperature = req.Temperature
	}
	return s.client.CreateTranslation(ctx, r)
}

func (s *defaultSession) Subscription(ctx context.Context) (*chatgpt.Subscription, error) {
	return s.client.GetSubscription(ctx)
}

func (s *defaultSession) BillingUsage(ctx context.Context, start, end time.Time) (*chatgpt.BillingUsage, error) {
	return s.client.GetBillingUsage(ctx, start, end)
}
