package session_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/session"
	"github.com/shoenig/test/must"
)

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func testSession(t *testing.T, h http.HandlerFunc) session.Session {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return session.NewFactory(session.Configuration{
		APIHost:    srv.URL,
		APIKey:     "test-key",
		HTTPClient: srv.Client(),
	}).Open()
}

func writeEvents(w http.ResponseWriter, payloads ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, p := range payloads {
		fmt.Fprintf(w, "data: %s\n\n", p)
	}
}

var jokeEvents = []string{
	`{"choices":[{"index":0,"delta":{"role":"assistant","content":""}}]}`,
	`{"choices":[{"index":0,"delta":{"content":"Knock"}}]}`,
	`{"choices":[{"index":0,"delta":{"content":" knock"}}]}`,
	`{"choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
	`[DONE]`,
}

// recorder is a Listener that remembers what it was told.
type recorder struct {
	mu      sync.Mutex
	events  []chatgpt.ChatCompletionResponse
	closed  int
	failure error
	first   chan struct{}
	once    sync.Once
}

func newRecorder() *recorder {
	return &recorder{first: make(chan struct{})}
}

func (r *recorder) OnEvent(ev chatgpt.ChatCompletionResponse) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.once.Do(func() { close(r.first) })
}

func (r *recorder) OnClosed() {
	r.mu.Lock()
	r.closed++
	r.mu.Unlock()
}

func (r *recorder) OnFailure(err error) {
	r.mu.Lock()
	r.failure = err
	r.mu.Unlock()
}

func TestChatText(t *testing.T) {
	s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, "/v1/chat/completions", r.URL.Path)
		writeEvents(w, jokeEvents...)
	})

	ctx := testCtx(t)

	f := s.ChatText(ctx, chatgpt.NewChatRequest(chatgpt.ChatMessage{Role: chatgpt.ChatRoleUser, Content: "joke"}))

	text, err := f.Wait(ctx)
	must.NoError(t, err)
	must.Eq(t, "Knock knock", text)

	select {
	case <-f.Done():
	default:
		t.Fatal("future should be resolved")
	}
}

func TestChatTextFailure(t *testing.T) {
	s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})

	ctx := testCtx(t)

	_, err := s.ChatText(ctx, chatgpt.NewChatRequest()).Wait(ctx)
	must.ErrorIs(t, err, chatgpt.ErrStreamClosed)
	must.True(t, chatgpt.IsAPIError(err, http.StatusInternalServerError))
}

func TestChatStream(t *testing.T) {
	s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, jokeEvents...)
	})

	rec := newRecorder()

	es, err := s.ChatStream(testCtx(t), chatgpt.NewChatRequest(), rec)
	must.NoError(t, err)
	<-es.Done()

	must.SliceLen(t, 4, rec.events)
	must.Eq(t, 1, rec.closed)
	must.NoError(t, rec.failure)
}

func TestChatStreamFailure(t *testing.T) {
	s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w,
			`{"choices":[{"index":0,"delta":{"content":"a"}}]}`,
			`{"error":{"message":"overloaded","type":"server_error"}}`,
		)
	})

	rec := newRecorder()

	es, err := s.ChatStream(testCtx(t), chatgpt.NewChatRequest(), rec)
	must.NoError(t, err)
	<-es.Done()

	must.SliceLen(t, 1, rec.events)
	must.Zero(t, rec.closed)
	must.ErrorIs(t, rec.failure, chatgpt.ErrStreamClosed)
}

func TestChatStreamCancel(t *testing.T) {
	s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, `{"choices":[{"index":0,"delta":{"content":"first"}}]}`)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})

	rec := newRecorder()

	es, err := s.ChatStream(testCtx(t), chatgpt.NewChatRequest(), rec)
	must.NoError(t, err)

	<-rec.first
	es.Cancel()
	<-es.Done()

	must.Eq(t, 1, rec.closed)
	must.NoError(t, rec.failure)
}

func TestChatStreamAs(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, "Bearer user-key", r.Header.Get("Authorization"))
		writeEvents(w, jokeEvents...)
	}))
	t.Cleanup(other.Close)

	s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should have gone to the user's host")
	})

	var (
		mu   sync.Mutex
		text string
	)

	es, err := s.ChatStreamAs(testCtx(t), other.URL, "user-key", chatgpt.NewChatRequest(), session.ListenerFuncs[chatgpt.ChatCompletionResponse]{
		Event: func(ev chatgpt.ChatCompletionResponse) {
			mu.Lock()
			defer mu.Unlock()
			if ev.Choices[0].Delta != nil {
				text += ev.Choices[0].Delta.Content
			}
		},
	})
	must.NoError(t, err)
	<-es.Done()

	must.Eq(t, "Knock knock", text)
}

func TestCompletionStream(t *testing.T) {
	s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, "/v1/completions", r.URL.Path)
		writeEvents(w, `{"choices":[{"text":"4"}]}`, `[DONE]`)
	})

	var got []string
	closed := false

	es, err := s.CompletionStream(testCtx(t), chatgpt.NewCompletionRequest("2+2="), session.ListenerFuncs[chatgpt.CompletionResponse]{
		Event:  func(ev chatgpt.CompletionResponse) { got = append(got, ev.Text()) },
		Closed: func() { closed = true },
	})
	must.NoError(t, err)
	<-es.Done()

	must.Eq(t, []string{"4"}, got)
	must.True(t, closed)
}

func TestUploadFile(t *testing.T) {
	s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
		must.NoError(t, r.ParseMultipartForm(1<<20))
		must.Eq(t, chatgpt.PurposeFineTune, r.FormValue("purpose"))

		f, hdr, err := r.FormFile("file")
		must.NoError(t, err)
		defer f.Close()

		b, err := io.ReadAll(f)
		must.NoError(t, err)
		must.Eq(t, "train.jsonl", hdr.Filename)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"file-1","object":"file","bytes":%d,"filename":%q,"purpose":"fine-tune"}`, len(b), hdr.Filename)
	})

	path := filepath.Join(t.TempDir(), "train.jsonl")
	must.NoError(t, os.WriteFile(path, []byte(`{"prompt":"p","completion":"c"}`+"\n"), 0o600))

	file, err := s.UploadFile(testCtx(t), path)
	must.NoError(t, err)
	must.Eq(t, "file-1", file.ID)
	must.Eq(t, int64(32), file.Bytes)

	_, err = s.UploadFile(testCtx(t), filepath.Join(t.TempDir(), "missing.jsonl"))
	must.ErrorIs(t, err, os.ErrNotExist)
}

func TestEditImage(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "otter.png")
	must.NoError(t, os.WriteFile(image, []byte("png"), 0o600))
	mask := filepath.Join(dir, "mask.png")
	must.NoError(t, os.WriteFile(mask, []byte("mask"), 0o600))

	t.Run("defaults", func(t *testing.T) {
		s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
			must.Eq(t, "/v1/images/edits", r.URL.Path)
			must.NoError(t, r.ParseMultipartForm(1<<20))
			must.Eq(t, "1", r.FormValue("n"))
			must.Eq(t, chatgpt.ImageSize256, r.FormValue("size"))
			must.Eq(t, chatgpt.ImageFormatURL, r.FormValue("response_format"))

			_, hdr, err := r.FormFile("image")
			must.NoError(t, err)
			must.Eq(t, "otter.png", hdr.Filename)

			_, _, err = r.FormFile("mask")
			must.ErrorIs(t, err, http.ErrMissingFile)

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"created":1,"data":[{"url":"https://example.com/1.png"}]}`)
		})

		resp, err := s.EditImage(testCtx(t), image, "", nil)
		must.NoError(t, err)
		must.Eq(t, "https://example.com/1.png", resp.Data[0].URL)
	})

	t.Run("request and mask", func(t *testing.T) {
		s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
			must.NoError(t, r.ParseMultipartForm(1<<20))
			must.Eq(t, "add a hat", r.FormValue("prompt"))
			must.Eq(t, "2", r.FormValue("n"))
			must.Eq(t, chatgpt.ImageSize256, r.FormValue("size"))
			must.Eq(t, chatgpt.ImageFormatURL, r.FormValue("response_format"))

			_, hdr, err := r.FormFile("mask")
			must.NoError(t, err)
			must.Eq(t, "mask.png", hdr.Filename)

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"created":1,"data":[{"url":"https://example.com/1.png"},{"url":"https://example.com/2.png"}]}`)
		})

		resp, err := s.EditImage(testCtx(t), image, mask, &chatgpt.ImageEditRequest{Prompt: "add a hat", N: 2})
		must.NoError(t, err)
		must.SliceLen(t, 2, resp.Data)
	})

	t.Run("missing image", func(t *testing.T) {
		s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := s.EditImage(testCtx(t), filepath.Join(dir, "missing.png"), "", nil)
		must.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestTranslate(t *testing.T) {
	s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, "/v1/audio/translations", r.URL.Path)
		must.NoError(t, r.ParseMultipartForm(1<<20))
		must.Eq(t, "0.2", r.FormValue("temperature"))
		must.Eq(t, chatgpt.ModelWhisper1, r.FormValue("model"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"text":"Hello"}`)
	})

	path := filepath.Join(t.TempDir(), "hola.mp3")
	must.NoError(t, os.WriteFile(path, []byte("mp3"), 0o600))

	resp, err := s.Translate(testCtx(t), path, nil)
	must.NoError(t, err)
	must.Eq(t, "Hello", resp.Text)
}

func TestBillingUsage(t *testing.T) {
	s := testSession(t, func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, "2024-01-01", r.URL.Query().Get("start_date"))
		must.Eq(t, "2024-01-31", r.URL.Query().Get("end_date"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","daily_costs":[],"total_usage":0}`)
	})

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	usage, err := s.BillingUsage(testCtx(t), start, start.AddDate(0, 0, 30))
	must.NoError(t, err)
	must.Eq(t, "list", usage.Object)
}
