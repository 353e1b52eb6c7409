package chatgpt

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// TranscriptionRequest is the request for an audio "transcription" request.
//
// https://platform.openai.com/docs/api-reference/audio/createTranscription
type TranscriptionRequest struct {
	// The audio file to transcribe, in one of these formats: flac, mp3, mp4,
	// mpeg, mpga, m4a, ogg, wav, or webm.
	//
	// Required.
	File     io.Reader
	FileName string

	// Defaults to "whisper-1".
	Model string

	// The language of the input audio in ISO-639-1 format.
	//
	// Optional.
	Language string

	// Optional text to guide the model's style or continue a previous audio
	// segment. It should match the audio language.
	Prompt string

	// The format of the transcript output: json, text, srt, verbose_json,
	// or vtt. Defaults to "json".
	ResponseFormat string

	// The sampling temperature, between 0 and 1. It is always sent.
	Temperature float64
}

// NewTranscriptionRequest returns a whisper-1 request with temperature 0.2
// and a JSON response.
func NewTranscriptionRequest(file io.Reader, name string) *TranscriptionRequest {
	return &TranscriptionRequest{
		File:           file,
		FileName:       name,
		Model:          ModelWhisper1,
		ResponseFormat: AudioFormatJSON,
		Temperature:    0.2,
	}
}

// TranslationRequest is the request for an audio "translation" request. The
// output is always English.
//
// https://platform.openai.com/docs/api-reference/audio/createTranslation
type TranslationRequest struct {
	// Required.
	File     io.Reader
	FileName string

	// Defaults to "whisper-1".
	Model string

	// Optional text in English to guide the model's style.
	Prompt string

	// Defaults to "json".
	ResponseFormat string

	// It is always sent.
	Temperature float64
}

// NewTranslationRequest returns a whisper-1 request with temperature 0.2 and
// a JSON response.
func NewTranslationRequest(file io.Reader, name string) *TranslationRequest {
	return &TranslationRequest{
		File:           file,
		FileName:       name,
		Model:          ModelWhisper1,
		ResponseFormat: AudioFormatJSON,
		Temperature:    0.2,
	}
}

// WhisperResponse is the response of the audio endpoints. For the text, srt
// and vtt formats the raw body is returned as Text.
type WhisperResponse struct {
	Text string `json:"text"`
}

// CreateTranscription transcribes audio into the input language.
//
// https://platform.openai.com/docs/api-reference/audio/createTranscription
func (c *Client) CreateTranscription(ctx context.Context, req *TranscriptionRequest, opts ...RequestOption) (*WhisperResponse, error) {
	f := newMultipartForm()
	f.file("file", nameOr(req.FileName, "audio.mp3"), req.File)
	f.field("model", nameOr(req.Model, ModelWhisper1))
	f.field("language", req.Language)
	f.field("prompt", req.Prompt)
	f.field("response_format", nameOr(req.ResponseFormat, AudioFormatJSON))
	f.floatField("temperature", req.Temperature)

	return c.doAudio(ctx, routeTranscriptions, f, req.ResponseFormat, opts)
}

// CreateTranslation translates audio into English.
//
// https://platform.openai.com/docs/api-reference/audio/createTranslation
func (c *Client) CreateTranslation(ctx context.Context, req *TranslationRequest, opts ...RequestOption) (*WhisperResponse, error) {
	f := newMultipartForm()
	f.file("file", nameOr(req.FileName, "audio.mp3"), req.File)
	f.field("model", nameOr(req.Model, ModelWhisper1))
	f.field("prompt", req.Prompt)
	f.field("response_format", nameOr(req.ResponseFormat, AudioFormatJSON))
	f.floatField("temperature", req.Temperature)

	return c.doAudio(ctx, routeTranslations, f, req.ResponseFormat, opts)
}

func (c *Client) doAudio(ctx context.Context, rt route, f *multipartForm, format string, opts []RequestOption) (*WhisperResponse, error) {
	if !isPlainAudioFormat(format) {
		var out WhisperResponse
		if err := c.doMultipart(ctx, rt, f, &out, opts...); err != nil {
			return nil, err
		}
		return &out, nil
	}

	body, contentType, err := f.finish()
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, call{route: rt, body: body, contentType: contentType}, opts...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	text, err := readAllString(resp)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", rt)
	}
	return &WhisperResponse{Text: text}, nil
}

func isPlainAudioFormat(format string) bool {
	switch strings.ToLower(format) {
	case AudioFormatText, AudioFormatSRT, AudioFormatVTT:
		return true
	}
	return false
}

func readAllString(resp *http.Response) (string, error) {
	var b strings.Builder
	if _, err := io.Copy(&b, resp.Body); err != nil {
		return "", err
	}
	return b.String(), nil
}
