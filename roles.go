package chatgpt

// ChatRole is the author of a chat message, either "system", "user", or
// "assistant".
//
// https://platform.openai.com/docs/guides/chat/introduction
type ChatRole = string

const (
	// ChatRoleUser is a user role.
	ChatRoleUser ChatRole = "user"

	// ChatRoleSystem is a system role.
	ChatRoleSystem ChatRole = "system"

	// ChatRoleAssistant is an assistant role.
	ChatRoleAssistant ChatRole = "assistant"
)

// Image sizes accepted by the image endpoints.
const (
	ImageSize256  = "256x256"
	ImageSize512  = "512x512"
	ImageSize1024 = "1024x1024"
)

// Image response formats.
const (
	ImageFormatURL     = "url"
	ImageFormatB64JSON = "b64_json"
)

// Audio response formats.
//
// https://platform.openai.com/docs/api-reference/audio/createTranscription#audio-createtranscription-response_format
const (
	AudioFormatJSON        = "json"
	AudioFormatText        = "text"
	AudioFormatSRT         = "srt"
	AudioFormatVerboseJSON = "verbose_json"
	AudioFormatVTT         = "vtt"
)

// File purposes.
const (
	PurposeFineTune   = "fine-tune"
	PurposeAssistants = "assistants"
	PurposeBatch      = "batch"
)

// List is the envelope the API uses for collections.
type List[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
}
