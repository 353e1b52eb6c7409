package chatgpt

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/pkg/errors"
)

// multipartForm builds a multipart/form-data body. The first write error is
// kept and reported by finish, so callers can add parts without checking each
// one.
type multipartForm struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newMultipartForm() *multipartForm {
	f := &multipartForm{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *multipartForm) file(field, name string, r io.Reader) {
	if f.err != nil {
		return
	}
	if r == nil {
		f.err = errors.Wrap(ErrMissingFile, field)
		return
	}

	fw, err := f.w.CreateFormFile(field, name)
	if err != nil {
		f.err = errors.Wrapf(err, "create form file %q", field)
		return
	}

	if _, err := io.Copy(fw, r); err != nil {
		f.err = errors.Wrapf(err, "copy form file %q", field)
	}
}

// field writes a text part, skipping empty values.
func (f *multipartForm) field(name, value string) {
	if f.err != nil || value == "" {
		return
	}
	if err := f.w.WriteField(name, value); err != nil {
		f.err = errors.Wrapf(err, "write form field %q", name)
	}
}

func (f *multipartForm) intField(name string, v int) {
	if v == 0 {
		return
	}
	f.field(name, strconv.Itoa(v))
}

// floatField always writes the value, zero included.
func (f *multipartForm) floatField(name string, v float64) {
	f.field(name, strconv.FormatFloat(v, 'f', -1, 64))
}

// finish closes the writer and returns the body with its content type.
func (f *multipartForm) finish() (io.Reader, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	if err := f.w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart writer")
	}
	return &f.buf, f.w.FormDataContentType(), nil
}

func (c *Client) doMultipart(ctx context.Context, rt route, f *multipartForm, out any, opts ...RequestOption) error {
	body, contentType, err := f.finish()
	if err != nil {
		return err
	}

	return c.do(ctx, call{
		route:       rt,
		body:        body,
		contentType: contentType,
	}, out, opts...)
}
