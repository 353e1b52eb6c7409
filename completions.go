package chatgpt

import (
	"context"
	"encoding/json"
)

// CompletionRequest contains information for a "completion" request to the
// OpenAI API.
//
// https://platform.openai.com/docs/api-reference/completions/create
type CompletionRequest struct {
	// ID of the model to use.
	//
	// Required.
	Model string `json:"model"`

	// The prompt to generate a completion for.
	//
	// Note that <|endoftext|> is the document separator that the model sees
	// during training, so if a prompt is not specified the model will generate
	// as if from the beginning of a new document.
	Prompt string `json:"prompt"`

	// https://platform.openai.com/docs/api-reference/completions/create#completions-create-suffix
	Suffix string `json:"suffix,omitempty"`

	// The maximum number of tokens to generate in the completion.
	//
	// The token count of your prompt plus max_tokens cannot exceed the
	// model's context length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Sampling temperature between 0 and 2. A zero value is not sent, so the
	// API default of 1 applies.
	Temperature float64 `json:"temperature,omitempty"`

	TopP float64 `json:"top_p,omitempty"`

	// How many completions to generate for each prompt.
	N int `json:"n,omitempty"`

	// Whether to stream back partial progress. CreateCompletionStream sets it
	// regardless of this value.
	Stream bool `json:"stream,omitempty"`

	LogProbs *int     `json:"logprobs,omitempty"`
	Echo     bool     `json:"echo,omitempty"`
	Stop     []string `json:"stop,omitempty"`

	PresencePenalty  float64 `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64 `json:"frequency_penalty,omitempty"`

	// WARNING: Because this parameter generates many completions, it can
	// quickly consume your token quota.
	BestOf int `json:"best_of,omitempty"`

	LogitBias map[string]int `json:"logit_bias,omitempty"`

	// A unique identifier representing your end-user.
	User string `json:"user,omitempty"`
}

// NewCompletionRequest returns a request for prompt with the defaults used
// throughout this package: text-davinci-003, 2048 max tokens, temperature
// 0.2, top_p 1 and a single choice.
func NewCompletionRequest(prompt string) *CompletionRequest {
	return &CompletionRequest{
		Model:       ModelTextDavinci003,
		Prompt:      prompt,
		MaxTokens:   2048,
		Temperature: 0.2,
		TopP:        1,
		N:           1,
	}
}

// Usage reports the tokens consumed by a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionChoice is one generated completion.
type CompletionChoice struct {
	Text         string          `json:"text"`
	Index        int             `json:"index"`
	LogProbs     json.RawMessage `json:"logprobs,omitempty"`
	FinishReason string          `json:"finish_reason"`
}

// CompletionResponse is the response from a "completion" request, and also
// the shape of each streamed completion chunk.
//
// https://platform.openai.com/docs/api-reference/completions/object
type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   Usage              `json:"usage"`
}

// Text returns the text of the first choice, or "" when there is none.
func (r *CompletionResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Text
}

// CreateCompletion performs a "completion" request using the OpenAI API.
//
// # Example
//
//	resp, _ := client.CreateCompletion(ctx, chatgpt.NewCompletionRequest("Once upon a time"))
//
// https://platform.openai.com/docs/api-reference/completions/create
func (c *Client) CreateCompletion(ctx context.Context, req *CompletionRequest, opts ...RequestOption) (*CompletionResponse, error) {
	var out CompletionResponse
	if err := c.doJSON(ctx, routeCompletions, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCompletionStream performs a streamed "completion" request. The
// caller must close the returned stream.
func (c *Client) CreateCompletionStream(ctx context.Context, req *CompletionRequest, opts ...RequestOption) (*Stream[CompletionResponse], error) {
	body, err := streamBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.stream(ctx, routeCompletions, body, opts...)
	if err != nil {
		return nil, err
	}
	return newStream[CompletionResponse](resp), nil
}
