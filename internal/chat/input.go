package chat

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

const (
	fileRef      = "#file:"
	urlRef       = "#url:"
	clipboardRef = "<clipboard>"
)

// expandInput replaces #file: and #url: references with the content they
// point to, and <clipboard> with the clipboard text. Only the typed input is
// expanded, never the content a reference brings in.
func (s *Session) expandInput(ctx context.Context, input string) (string, error) {
	var (
		b    strings.Builder
		clip *string
		rest = input
	)

	for rest != "" {
		i := strings.IndexFunc(rest, isNotSpace)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		rest = rest[i:]

		j := strings.IndexFunc(rest, unicode.IsSpace)
		if j < 0 {
			j = len(rest)
		}
		field := rest[:j]
		rest = rest[j:]

		switch {
		case strings.HasPrefix(field, fileRef):
			content, err := readFileRef(strings.TrimPrefix(field, fileRef))
			if err != nil {
				return "", err
			}
			b.WriteString(content)
		case strings.HasPrefix(field, urlRef):
			content, err := s.fetchURLRef(ctx, strings.TrimPrefix(field, urlRef))
			if err != nil {
				return "", err
			}
			b.WriteString(content)
		case strings.Contains(field, clipboardRef):
			if clip == nil {
				text, err := s.Clipboard()
				if err != nil {
					return "", err
				}
				clip = &text
			}
			b.WriteString(strings.ReplaceAll(field, clipboardRef, *clip))
		default:
			b.WriteString(field)
		}
	}

	return b.String(), nil
}

func isNotSpace(r rune) bool {
	return !unicode.IsSpace(r)
}

func readFileRef(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open file %q", path)
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, maxIncludeBytes))
	if err != nil {
		return "", errors.Wrapf(err, "read file %q", path)
	}
	return string(b), nil
}

// fetchURLRef GETs url and returns the body. A URL without a scheme is
// fetched over https.
func (s *Session) fetchURLRef(ctx context.Context, url string) (string, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, "create request for %q", url)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "fetch URL %q", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("fetch URL %q: unexpected status code: %d", url, resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxIncludeBytes))
	if err != nil {
		return "", errors.Wrapf(err, "read URL %q", url)
	}
	return string(b), nil
}
