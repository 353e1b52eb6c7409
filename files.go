package chatgpt

import (
	"context"
	"io"
)

// File is an uploaded document.
//
// https://platform.openai.com/docs/api-reference/files/object
type File struct {
	ID            string `json:"id"`
	Object        string `json:"object"`
	Bytes         int64  `json:"bytes"`
	CreatedAt     int64  `json:"created_at"`
	Filename      string `json:"filename"`
	Purpose       string `json:"purpose"`
	Status        string `json:"status,omitempty"`
	StatusDetails string `json:"status_details,omitempty"`
}

// ListFiles returns the files that belong to the user's organization.
//
// https://platform.openai.com/docs/api-reference/files/list
func (c *Client) ListFiles(ctx context.Context, opts ...RequestOption) (*List[File], error) {
	var out List[File]
	if err := c.do(ctx, call{route: routeListFiles}, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadFileRequest is the request for an "upload file" request.
//
// https://platform.openai.com/docs/api-reference/files/create
type UploadFileRequest struct {
	// Name of the file to be uploaded, e.g. "mydata.jsonl".
	//
	// Required.
	Name string

	// Purpose of the uploaded file. Defaults to "fine-tune".
	Purpose string

	// Body of the file to upload.
	//
	// Required.
	Body io.Reader
}

// UploadFile performs an "upload file" request using the OpenAI API.
//
// # CURL
//
//	$ curl "https://api.openai.com/v1/files" \
//	 -H "Authorization: Bearer ..." \
//	 -F purpose="fine-tune" \
//	 -F file='@mydata.jsonl'
//
// https://platform.openai.com/docs/api-reference/files/create
func (c *Client) UploadFile(ctx context.Context, req *UploadFileRequest, opts ...RequestOption) (*File, error) {
	f := newMultipartForm()
	f.file("file", nameOr(req.Name, "file"), req.Body)
	f.field("purpose", nameOr(req.Purpose, PurposeFineTune))

	var out File
	if err := c.doMultipart(ctx, routeUploadFile, f, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFileResponse is the response of DeleteFile.
type DeleteFileResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// DeleteFile deletes a file.
//
// # CURL
//
//	$ curl "https://api.openai.com/v1/files/file-XjGxS3KTG0uNmNOK362iJua3" \
//		-X DELETE \
//		-H "Authorization: Bearer ..."
//
// https://platform.openai.com/docs/api-reference/files/delete
func (c *Client) DeleteFile(ctx context.Context, id string, opts ...RequestOption) (*DeleteFileResponse, error) {
	var out DeleteFileResponse
	err := c.do(ctx, call{
		route:  routeDeleteFile,
		params: map[string]string{"file_id": id},
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFile returns information about a file.
//
// https://platform.openai.com/docs/api-reference/files/retrieve
func (c *Client) GetFile(ctx context.Context, id string, opts ...RequestOption) (*File, error) {
	var out File
	err := c.do(ctx, call{
		route:  routeGetFile,
		params: map[string]string{"file_id": id},
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFileContent returns the contents of a file as it is downloaded.
//
// The caller is responsible for closing the body, and should do so as soon
// as possible.
//
// https://platform.openai.com/docs/api-reference/files/retrieve-contents
func (c *Client) GetFileContent(ctx context.Context, id string, opts ...RequestOption) (io.ReadCloser, error) {
	resp, err := c.send(ctx, call{
		route:  routeFileContent,
		params: map[string]string{"file_id": id},
	}, opts...)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
