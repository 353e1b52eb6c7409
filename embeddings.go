package chatgpt

import "context"

// EmbeddingRequest is the request for an "embedding" request.
//
// https://platform.openai.com/docs/api-reference/embeddings/create
type EmbeddingRequest struct {
	// Required.
	Model string `json:"model"`

	// Input text to get embeddings for. Each input must not exceed the
	// model's maximum input tokens.
	//
	// Required.
	Input []string `json:"input"`

	User string `json:"user,omitempty"`
}

// NewEmbeddingRequest returns a text-embedding-ada-002 request for inputs.
func NewEmbeddingRequest(inputs ...string) *EmbeddingRequest {
	return &EmbeddingRequest{
		Model: ModelTextEmbeddingAda002,
		Input: inputs,
	}
}

// Embedding is the vector for one input. Index is the input's position in
// the request.
type Embedding struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

// EmbeddingResponse is the response from an "embedding" request.
type EmbeddingResponse struct {
	Object string      `json:"object"`
	Data   []Embedding `json:"data"`
	Model  string      `json:"model"`
	Usage  Usage       `json:"usage"`
}

// Vectors returns the embeddings ordered by input index.
func (r *EmbeddingResponse) Vectors() [][]float64 {
	out := make([][]float64, len(r.Data))
	for _, d := range r.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = d.Embedding
		}
	}
	return out
}

// CreateEmbedding performs an "embedding" request using the OpenAI API.
//
// # Example
//
//	resp, _ := client.CreateEmbedding(ctx, chatgpt.NewEmbeddingRequest("The food was delicious"))
//
// https://platform.openai.com/docs/api-reference/embeddings/create
func (c *Client) CreateEmbedding(ctx context.Context, req *EmbeddingRequest, opts ...RequestOption) (*EmbeddingResponse, error) {
	var out EmbeddingResponse
	if err := c.doJSON(ctx, routeEmbeddings, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}
