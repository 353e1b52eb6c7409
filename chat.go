package chatgpt

import (
	"context"
	"strings"
)

// ChatMessage is one message of a chat conversation.
//
// https://platform.openai.com/docs/api-reference/chat/create#chat-create-messages
type ChatMessage struct {
	// Role is the author of the message, e.g. "user" or "assistant".
	//
	// Streamed deltas only carry a role in the first chunk.
	Role ChatRole `json:"role,omitempty"`

	// Content is the text of the message. A null content, which the API
	// sends on some deltas, decodes as "".
	Content string `json:"content"`

	// Name is the author of this message. May contain a-z, A-Z, 0-9, and
	// underscores, with a maximum length of 64 characters.
	//
	// Optional.
	Name string `json:"name,omitempty"`
}

// ChatChoice is one choice of a chat response. Complete responses fill
// Message, streamed chunks fill Delta.
type ChatChoice struct {
	Index        int          `json:"index"`
	Message      *ChatMessage `json:"message,omitempty"`
	Delta        *ChatMessage `json:"delta,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

// ChatCompletionRequest is the request for a "chat" request to the OpenAI
// API.
//
// https://platform.openai.com/docs/api-reference/chat/create
type ChatCompletionRequest struct {
	// ID of the model to use.
	//
	// Required.
	Model string `json:"model"`

	// The messages to generate chat completions for.
	//
	// Required.
	Messages []ChatMessage `json:"messages"`

	// What sampling temperature to use, between 0 and 2. A zero value is not
	// sent.
	Temperature float64 `json:"temperature,omitempty"`

	TopP float64 `json:"top_p,omitempty"`

	// How many chat completion choices to generate for each input message.
	N int `json:"n,omitempty"`

	// If set, partial message deltas will be sent. CreateChatStream sets it
	// regardless of this value.
	Stream bool `json:"stream,omitempty"`

	// Up to 4 sequences where the API will stop generating further tokens.
	Stop []string `json:"stop,omitempty"`

	// The maximum number of tokens allowed for the generated answer.
	MaxTokens int `json:"max_tokens,omitempty"`

	PresencePenalty  float64        `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64        `json:"frequency_penalty,omitempty"`
	LogitBias        map[string]int `json:"logit_bias,omitempty"`

	// A unique identifier representing your end-user.
	User string `json:"user,omitempty"`
}

// NewChatRequest returns a chat request for messages with the defaults used
// throughout this package: gpt-3.5-turbo, 2048 max tokens, temperature 0.2,
// top_p 1 and a single choice.
func NewChatRequest(messages ...ChatMessage) *ChatCompletionRequest {
	return &ChatCompletionRequest{
		Model:       ModelGPT35Turbo,
		Messages:    messages,
		MaxTokens:   2048,
		Temperature: 0.2,
		TopP:        1,
		N:           1,
	}
}

// ChatCompletionResponse is the response from a "chat" request, and also the
// shape of each streamed chunk.
//
// https://platform.openai.com/docs/api-reference/chat/object
type ChatCompletionResponse struct {
	ID                string       `json:"id"`
	Object            string       `json:"object"`
	Created           int64        `json:"created"`
	Model             string       `json:"model"`
	Choices           []ChatChoice `json:"choices"`
	Usage             Usage        `json:"usage"`
	SystemFingerprint string       `json:"system_fingerprint,omitempty"`
}

// FirstMessage returns the message of the first choice, if any.
func (r *ChatCompletionResponse) FirstMessage() (ChatMessage, bool) {
	if r == nil || len(r.Choices) == 0 || r.Choices[0].Message == nil {
		return ChatMessage{}, false
	}
	return *r.Choices[0].Message, true
}

// CreateChat performs a "chat" request using the OpenAI API.
//
// # Example
//
//	resp, _ := client.CreateChat(ctx, chatgpt.NewChatRequest(chatgpt.ChatMessage{
//		Role:    chatgpt.ChatRoleUser,
//		Content: "Hello!",
//	}))
//
// https://platform.openai.com/docs/api-reference/chat/create
func (c *Client) CreateChat(ctx context.Context, req *ChatCompletionRequest, opts ...RequestOption) (*ChatCompletionResponse, error) {
	var out ChatCompletionResponse
	if err := c.doJSON(ctx, routeChatCompletions, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateChatStream performs a streamed "chat" request. Each event is a chunk
// with Delta set on its choices. The caller must close the returned stream.
//
// https://platform.openai.com/docs/api-reference/chat/streaming
func (c *Client) CreateChatStream(ctx context.Context, req *ChatCompletionRequest, opts ...RequestOption) (*Stream[ChatCompletionResponse], error) {
	body, err := streamBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.stream(ctx, routeChatCompletions, body, opts...)
	if err != nil {
		return nil, err
	}
	return newStream[ChatCompletionResponse](resp), nil
}

// ChatAccumulator rebuilds the reply text from streamed chat chunks.
//
// Choices whose delta announces the assistant role are skipped. A choice
// finishing with "stop" completes the text; every other delta is appended.
type ChatAccumulator struct {
	b    strings.Builder
	done bool
}

// Add folds one chunk into the text and reports whether the reply is
// complete. Chunks added after completion are ignored.
func (a *ChatAccumulator) Add(chunk ChatCompletionResponse) bool {
	if a.done {
		return true
	}

	for _, choice := range chunk.Choices {
		if choice.Delta != nil && choice.Delta.Role == ChatRoleAssistant {
			continue
		}

		if strings.EqualFold(choice.FinishReason, "stop") {
			a.done = true
			return true
		}

		if choice.Delta != nil {
			a.b.WriteString(choice.Delta.Content)
		}
	}

	return false
}

// Done reports whether a "stop" has been seen.
func (a *ChatAccumulator) Done() bool {
	return a.done
}

// String returns the text accumulated so far.
func (a *ChatAccumulator) String() string {
	return a.b.String()
}

// CollectChatStream reads a chat stream to its end and returns the full reply
// text. It resolves on "stop", "[DONE]", or a clean end of stream, and closes
// the stream before returning.
//
// When the stream fails, the error wraps both ErrStreamClosed and the cause,
// and the text received so far is returned with it.
func CollectChatStream(ctx context.Context, stream *Stream[ChatCompletionResponse]) (string, error) {
	defer stream.Close()

	var acc ChatAccumulator
	for stream.Next() {
		if acc.Add(stream.Current()) {
			return acc.String(), nil
		}
		if err := ctx.Err(); err != nil {
			return acc.String(), streamClosed(err)
		}
	}

	if err := stream.Err(); err != nil {
		return acc.String(), streamClosed(err)
	}
	return acc.String(), nil
}
