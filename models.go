package chatgpt

import "context"

// Model is an OpenAI model identifier.
type Model = string

// Chat models, used with CreateChat.
//
// https://platform.openai.com/docs/models
const (
	ModelGPT35Turbo    Model = "gpt-3.5-turbo"
	ModelGPT35Turbo16K Model = "gpt-3.5-turbo-16k"
	ModelGPT4          Model = "gpt-4"
	ModelGPT432K       Model = "gpt-4-32k"
	ModelGPT4Turbo     Model = "gpt-4-turbo"
	ModelGPT4o         Model = "gpt-4o"
	ModelGPT4oMini     Model = "gpt-4o-mini"
)

// Text completion models, used with CreateCompletion.
const (
	// Most capable GPT-3 model. Can do any task the other models can do, often
	// with higher quality, longer output and better instruction-following.
	ModelTextDavinci003 Model = "text-davinci-003"

	// Very capable, but faster and lower cost than Davinci.
	ModelTextCurie001 Model = "text-curie-001"

	ModelTextBabbage001 Model = "text-babbage-001"
	ModelTextAda001     Model = "text-ada-001"
)

// Used for the CreateEdit API endpoint.
const (
	ModelTextDavinciEdit001 Model = "text-davinci-edit-001"
	ModelCodeDavinciEdit001 Model = "code-davinci-edit-001"
)

const (
	// ModelTextEmbeddingAda002 is the embedding model used by
	// NewEmbeddingRequest.
	//
	// https://platform.openai.com/docs/guides/embeddings
	ModelTextEmbeddingAda002 Model = "text-embedding-ada-002"

	ModelTextEmbedding3Small Model = "text-embedding-3-small"
	ModelTextEmbedding3Large Model = "text-embedding-3-large"

	// ModelWhisper1 is the only speech to text model.
	//
	// https://platform.openai.com/docs/guides/speech-to-text
	ModelWhisper1 Model = "whisper-1"

	ModelDALLE2 Model = "dall-e-2"
	ModelDALLE3 Model = "dall-e-3"
)

// ModelInfo describes a model returned by ListModels.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// Models is the response of ListModels.
//
// https://platform.openai.com/docs/api-reference/models/list
type Models = List[ModelInfo]

// ListModels lists the models that can be used with the API key.
//
// # Example
//
//	resp, _ := client.ListModels(ctx)
//
//	for _, model := range resp.Data {
//	   fmt.Println(model.ID)
//	}
//
// https://platform.openai.com/docs/api-reference/models/list
func (c *Client) ListModels(ctx context.Context, opts ...RequestOption) (*Models, error) {
	var out Models
	if err := c.do(ctx, call{route: routeModels}, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}
