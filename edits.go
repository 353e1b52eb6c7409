package chatgpt

import "context"

// EditRequest is the request for an "edit" request to the OpenAI API.
//
// https://platform.openai.com/docs/api-reference/edits/create
type EditRequest struct {
	// Required.
	Model string `json:"model"`

	// The input text to use as a starting point for the edit.
	Input string `json:"input,omitempty"`

	// The instruction that tells the model how to edit the prompt.
	//
	// Required.
	Instruction string `json:"instruction"`

	N           int     `json:"n,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

// NewEditRequest returns an edit request using text-davinci-edit-001.
func NewEditRequest(input, instruction string) *EditRequest {
	return &EditRequest{
		Model:       ModelTextDavinciEdit001,
		Input:       input,
		Instruction: instruction,
		N:           1,
		Temperature: 0.2,
		TopP:        1,
	}
}

// EditResponse is the response from an "edit" request. Its choices have
// the same shape as completion choices.
type EditResponse = CompletionResponse

// CreateEdit performs an "edit" request using the OpenAI API.
//
// # Example
//
//	resp, _ := client.CreateEdit(ctx, chatgpt.NewEditRequest("What day of the wek is it?", "Fix the spelling mistakes"))
//
// https://platform.openai.com/docs/api-reference/edits/create
func (c *Client) CreateEdit(ctx context.Context, req *EditRequest, opts ...RequestOption) (*EditResponse, error) {
	var out EditResponse
	if err := c.doJSON(ctx, routeEdits, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}
