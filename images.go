package chatgpt

import (
	"context"
	"io"
)

// ImageRequest is the request for an image "generation" request.
//
// https://platform.openai.com/docs/api-reference/images/create
type ImageRequest struct {
	// A text description of the desired image(s).
	//
	// Required.
	Prompt string `json:"prompt"`

	Model string `json:"model,omitempty"`

	// The number of images to generate. Must be between 1 and 10.
	N int `json:"n,omitempty"`

	// The size of the generated images, e.g. "256x256".
	Size string `json:"size,omitempty"`

	// The format in which the generated images are returned, "url" or
	// "b64_json".
	ResponseFormat string `json:"response_format,omitempty"`

	User string `json:"user,omitempty"`
}

// NewImageRequest returns a request for one 256x256 image returned as a URL.
func NewImageRequest(prompt string) *ImageRequest {
	return &ImageRequest{
		Prompt:         prompt,
		N:              1,
		Size:           ImageSize256,
		ResponseFormat: ImageFormatURL,
	}
}

// ImageData is one generated image.
type ImageData struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// ImageResponse is the response of the image endpoints.
//
// https://platform.openai.com/docs/api-reference/images/object
type ImageResponse struct {
	Created int64       `json:"created"`
	Data    []ImageData `json:"data"`
}

// CreateImage performs an image "generation" request using the OpenAI API.
//
// # Example
//
//	resp, _ := client.CreateImage(ctx, chatgpt.NewImageRequest("a white siamese cat"))
//
//	fmt.Println(resp.Data[0].URL)
//
// https://platform.openai.com/docs/api-reference/images/create
func (c *Client) CreateImage(ctx context.Context, req *ImageRequest, opts ...RequestOption) (*ImageResponse, error) {
	var out ImageResponse
	if err := c.doJSON(ctx, routeImages, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImageEditRequest is the request for an image "edit" request. It is sent as
// multipart form data.
//
// https://platform.openai.com/docs/api-reference/images/createEdit
type ImageEditRequest struct {
	// The image to edit. Must be a valid PNG file, less than 4MB, and
	// square.
	//
	// Required.
	Image     io.Reader
	ImageName string

	// An additional image whose fully transparent areas indicate where the
	// image should be edited.
	//
	// Optional.
	Mask     io.Reader
	MaskName string

	// Required.
	Prompt string

	N              int
	Size           string
	ResponseFormat string

	// Optional.
	User string
}

// NewImageEditRequest returns a request to edit image into one 256x256
// image returned as a URL.
func NewImageEditRequest(image io.Reader, name, prompt string) *ImageEditRequest {
	return &ImageEditRequest{
		Image:          image,
		ImageName:      name,
		Prompt:         prompt,
		N:              1,
		Size:           ImageSize256,
		ResponseFormat: ImageFormatURL,
	}
}

// CreateImageEdit performs an image "edit" request using the OpenAI API.
//
// # CURL
//
//	$ curl https://api.openai.com/v1/images/edits \
//	  -H "Authorization: Bearer $OPENAI_API_KEY" \
//	  -F image="@otter.png" \
//	  -F mask="@mask.png" \
//	  -F prompt="A cute baby sea otter wearing a beret" \
//	  -F n=2 \
//	  -F size="1024x1024"
//
// https://platform.openai.com/docs/api-reference/images/createEdit
func (c *Client) CreateImageEdit(ctx context.Context, req *ImageEditRequest, opts ...RequestOption) (*ImageResponse, error) {
	f := newMultipartForm()
	f.file("image", nameOr(req.ImageName, "image.png"), req.Image)
	if req.Mask != nil {
		f.file("mask", nameOr(req.MaskName, "mask.png"), req.Mask)
	}
	f.field("prompt", req.Prompt)
	f.intField("n", req.N)
	f.field("size", req.Size)
	f.field("response_format", req.ResponseFormat)
	f.field("user", req.User)

	var out ImageResponse
	if err := c.doMultipart(ctx, routeImageEdits, f, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
