package chat_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/internal/chat"
	"github.com/picatz/chatgpt/internal/history"
	"github.com/picatz/chatgpt/internal/history/memory"
	"github.com/shoenig/test/must"
)

type fakeAPI struct {
	t *testing.T

	// reply is streamed for chat requests.
	reply []string

	// summary answers non-streamed chat requests.
	summary string

	mu       sync.Mutex
	requests []chatgpt.ChatCompletionRequest

	// limited is how many non-streamed requests are rejected with 429
	// before one succeeds.
	limited int
}

func (f *fakeAPI) rateLimit(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limited = n
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req chatgpt.ChatCompletionRequest
	must.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
	f.mu.Lock()
	f.requests = append(f.requests, req)
	limited := !req.Stream && f.limited > 0
	if limited {
		f.limited--
	}
	f.mu.Unlock()

	if limited {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`)
		return
	}

	if !req.Stream {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-summary","choices":[{"index":0,"message":{"role":"assistant","content":%q}}],"usage":{"total_tokens":42}}`, f.summary)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	fmt.Fprint(w, "data: {\"id\":\"chatcmpl-1\",\"choices\":[{\"index\":0,\"delta\":{\"role\":\"assistant\"}}]}\n\n")
	for _, part := range f.reply {
		fmt.Fprintf(w, "data: {\"id\":\"chatcmpl-1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
	}
	fmt.Fprint(w, "data: {\"id\":\"chatcmpl-1\",\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func (f *fakeAPI) all() []chatgpt.ChatCompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

func (f *fakeAPI) last() chatgpt.ChatCompletionRequest {
	requests := f.all()
	must.SliceNotEmpty(f.t, requests)
	return requests[len(requests)-1]
}

type harness struct {
	api     *fakeAPI
	store   history.Store
	input   *bytes.Buffer
	output  *bytes.Buffer
	session *chat.Session
}

func newHarness(t *testing.T, store history.Store, lines ...string) *harness {
	t.Helper()

	api := &fakeAPI{t: t, reply: []string{"Hello", " there"}, summary: "recap"}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := chatgpt.NewClient("test-key",
		chatgpt.WithBaseURL(srv.URL),
		chatgpt.WithHTTPClient(srv.Client()),
	)

	if store == nil {
		store = memory.NewBackend[string, history.Exchange]()
	}

	h := &harness{
		api:    api,
		store:  store,
		input:  bytes.NewBuffer(nil),
		output: bytes.NewBuffer(nil),
	}
	h.typeLines(lines...)

	s, restore, err := chat.NewSession(context.Background(), client, chatgpt.ModelGPT4o, h.input, h.output, store)
	must.NoError(t, err)
	t.Cleanup(restore)
	s.Plain = true

	h.session = s
	return h
}

func (h *harness) typeLines(lines ...string) {
	for _, line := range lines {
		h.input.WriteString(line + "\r")
	}
}

func TestSessionChat(t *testing.T) {
	h := newHarness(t, nil, "hi")

	done, err := h.session.RunOnce(t.Context())
	must.NoError(t, err)
	must.False(t, done)

	req := h.api.last()
	must.True(t, req.Stream)
	must.Eq(t, chatgpt.ModelGPT4o, req.Model)
	must.SliceLen(t, 1, req.Messages)
	must.Eq(t, "hi", req.Messages[0].Content)

	must.SliceLen(t, 2, h.session.Messages)
	must.Eq(t, chatgpt.ChatRoleAssistant, h.session.Messages[1].Role)
	must.Eq(t, "Hello there", h.session.Messages[1].Content)
	must.Positive(t, h.session.TokensUsed)
	must.StrContains(t, h.output.String(), "Hello there")

	exchanges, err := history.Recent(t.Context(), h.store, 10)
	must.NoError(t, err)
	must.SliceLen(t, 1, exchanges)
	must.Eq(t, "hi", exchanges[0].Request.Content)
	must.Eq(t, "Hello there", exchanges[0].Response.Content)
	must.Eq(t, chatgpt.ModelGPT4o, exchanges[0].Model)
	must.Eq(t, h.session.TokensUsed, exchanges[0].Tokens())

	done, err = h.session.RunOnce(t.Context())
	must.NoError(t, err)
	must.True(t, done)
}

func TestSessionCommands(t *testing.T) {
	h := newHarness(t, nil,
		"system: be brief",
		"model gpt-4",
		"tokens",
		"messages",
		"delete",
		"help",
		"exit",
	)

	run := func() {
		t.Helper()
		done, err := h.session.RunOnce(t.Context())
		must.NoError(t, err)
		must.False(t, done)
	}

	run()
	must.SliceLen(t, 1, h.session.Messages)
	must.Eq(t, chatgpt.ChatRoleSystem, h.session.Messages[0].Role)
	must.Eq(t, "be brief", h.session.Messages[0].Content)

	run()
	must.Eq(t, "gpt-4", h.session.Model)

	run()
	must.StrContains(t, h.output.String(), "Tokens used: 0")

	run()
	must.StrContains(t, h.output.String(), "system: be brief")

	run()
	must.SliceEmpty(t, h.session.Messages)

	run()
	must.StrContains(t, h.output.String(), "#file:path")

	done, err := h.session.RunOnce(t.Context())
	must.NoError(t, err)
	must.True(t, done)

	must.SliceEmpty(t, h.api.all())
}

func TestSessionLoadsHistory(t *testing.T) {
	store := memory.NewBackend[string, history.Exchange]()

	for i := range 3 {
		_, err := history.Record(t.Context(), store, history.Exchange{
			Model:            chatgpt.ModelGPT4o,
			Request:          chatgpt.ChatMessage{Role: chatgpt.ChatRoleUser, Content: fmt.Sprintf("question %d", i)},
			Response:         chatgpt.ChatMessage{Role: chatgpt.ChatRoleAssistant, Content: fmt.Sprintf("answer %d", i)},
			PromptTokens:     10,
			CompletionTokens: 5,
		}, "")
		must.NoError(t, err)
	}

	h := newHarness(t, store, "history 2")

	must.SliceLen(t, 6, h.session.Messages)
	must.Eq(t, "question 0", h.session.Messages[0].Content)
	must.Eq(t, "answer 2", h.session.Messages[5].Content)
	must.Eq(t, 45, h.session.TokensUsed)

	done, err := h.session.RunOnce(t.Context())
	must.NoError(t, err)
	must.False(t, done)

	out := h.output.String()
	must.StrContains(t, out, "question 2")
	must.StrContains(t, out, "answer 1")
	must.StrNotContains(t, out, "question 0")
}

func TestSessionEraseAll(t *testing.T) {
	store := memory.NewBackend[string, history.Exchange]()
	_, err := history.Record(t.Context(), store, history.Exchange{
		Request:  chatgpt.ChatMessage{Role: chatgpt.ChatRoleUser, Content: "q"},
		Response: chatgpt.ChatMessage{Role: chatgpt.ChatRoleAssistant, Content: "a"},
	}, "")
	must.NoError(t, err)

	h := newHarness(t, store, "erase all", "y")
	must.SliceLen(t, 2, h.session.Messages)

	done, err := h.session.RunOnce(t.Context())
	must.NoError(t, err)
	must.False(t, done)

	must.SliceEmpty(t, h.session.Messages)
	must.StrContains(t, h.output.String(), "1 stored exchanges deleted")

	exchanges, err := history.Recent(t.Context(), store, 10)
	must.NoError(t, err)
	must.SliceEmpty(t, exchanges)
}

func TestSessionReferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	must.NoError(t, os.WriteFile(path, []byte("file body"), 0o600))

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "page body")
	}))
	t.Cleanup(page.Close)

	h := newHarness(t, nil, "read #file:"+path+" and #url:"+page.URL)

	_, err := h.session.RunOnce(t.Context())
	must.NoError(t, err)

	must.Eq(t, "read file body and page body", h.api.last().Messages[0].Content)
}

func TestSessionReferencedContentIsNotExpanded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	must.NoError(t, os.WriteFile(path, []byte("literal <clipboard> token and #file:/does/not/exist"), 0o600))

	h := newHarness(t, nil, "read  #file:"+path)

	var reads int
	h.session.Clipboard = func() (string, error) {
		reads++
		return "secret", nil
	}

	_, err := h.session.RunOnce(t.Context())
	must.NoError(t, err)

	must.Eq(t, "read  literal <clipboard> token and #file:/does/not/exist", h.api.last().Messages[0].Content)
	must.Zero(t, reads)
}

func TestSessionClipboard(t *testing.T) {
	h := newHarness(t, nil, "fix (<clipboard>) then <clipboard>")

	var reads int
	h.session.Clipboard = func() (string, error) {
		reads++
		return "x := 1", nil
	}

	_, err := h.session.RunOnce(t.Context())
	must.NoError(t, err)

	must.Eq(t, "fix (x := 1) then x := 1", h.api.last().Messages[0].Content)
	must.Eq(t, 1, reads)
}

func TestSessionClipboardError(t *testing.T) {
	h := newHarness(t, nil, "paste <clipboard>")
	h.session.Clipboard = func() (string, error) {
		return "", fmt.Errorf("read clipboard: no display")
	}

	done, err := h.session.RunOnce(t.Context())
	must.ErrorContains(t, err, "no display")
	must.False(t, done)
	must.SliceEmpty(t, h.api.all())
}

func TestSessionMissingFile(t *testing.T) {
	h := newHarness(t, nil, "read #file:/does/not/exist")

	done, err := h.session.RunOnce(t.Context())
	must.ErrorContains(t, err, "open file")
	must.False(t, done)
	must.SliceEmpty(t, h.api.all())
}

func TestSessionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	t.Cleanup(srv.Close)

	client := chatgpt.NewClient("bad-key", chatgpt.WithBaseURL(srv.URL))
	input := bytes.NewBufferString("hi\r")

	s, restore, err := chat.NewSession(t.Context(), client, chatgpt.ModelGPT4o, input, &bytes.Buffer{}, memory.NewBackend[string, history.Exchange]())
	must.NoError(t, err)
	t.Cleanup(restore)

	done, err := s.RunOnce(t.Context())
	must.False(t, done)
	must.True(t, chatgpt.IsAPIError(err, http.StatusUnauthorized))
	must.SliceEmpty(t, s.Messages)
}

func TestSessionSummarize(t *testing.T) {
	h := newHarness(t, nil, "hi")
	h.session.SummarizeAt = 1

	_, err := h.session.RunOnce(t.Context())
	must.NoError(t, err)

	must.SliceLen(t, 2, h.api.all())
	summaryReq := h.api.last()
	must.False(t, summaryReq.Stream)
	must.SliceLen(t, 2, summaryReq.Messages)
	must.True(t, strings.Contains(summaryReq.Messages[1].Content, "assistant:\nHello there"))

	must.SliceLen(t, 1, h.session.Messages)
	must.Eq(t, chatgpt.ChatRoleSystem, h.session.Messages[0].Role)
	must.Eq(t, "Summary of previous messages for context: recap", h.session.Messages[0].Content)
	must.Eq(t, 42, h.session.TokensUsed)
}

func TestSessionSummarizeRateLimited(t *testing.T) {
	t.Run("retries", func(t *testing.T) {
		h := newHarness(t, nil, "hi")
		h.session.SummarizeAt = 1
		h.session.SummarizeRetryDelay = time.Millisecond
		h.api.rateLimit(2)

		_, err := h.session.RunOnce(t.Context())
		must.NoError(t, err)

		// One streamed reply, then two rejected summaries and one accepted.
		must.SliceLen(t, 4, h.api.all())
		must.SliceLen(t, 1, h.session.Messages)
		must.Eq(t, "Summary of previous messages for context: recap", h.session.Messages[0].Content)
		must.Eq(t, 42, h.session.TokensUsed)
	})

	t.Run("gives up", func(t *testing.T) {
		h := newHarness(t, nil, "hi")
		h.session.SummarizeAt = 1
		h.session.SummarizeRetryDelay = time.Millisecond
		h.api.rateLimit(100)

		done, err := h.session.RunOnce(t.Context())
		must.False(t, done)
		must.True(t, chatgpt.IsAPIError(err, http.StatusTooManyRequests))

		must.SliceLen(t, 6, h.api.all())
		must.SliceLen(t, 2, h.session.Messages)
		must.Eq(t, "Hello there", h.session.Messages[1].Content)
	})
}
