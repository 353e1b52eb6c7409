package chatgpt_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/picatz/chatgpt"
	"github.com/pkg/errors"
	"github.com/shoenig/test/must"
)

func chunk(role, content, finish string) chatgpt.ChatCompletionResponse {
	return chatgpt.ChatCompletionResponse{
		Choices: []chatgpt.ChatChoice{{
			Delta:        &chatgpt.ChatMessage{Role: role, Content: content},
			FinishReason: finish,
		}},
	}
}

func TestChatAccumulator(t *testing.T) {
	tests := []struct {
		name   string
		chunks []chatgpt.ChatCompletionResponse
		want   string
		done   bool
	}{
		{
			name: "role announcement is skipped",
			chunks: []chatgpt.ChatCompletionResponse{
				chunk(chatgpt.ChatRoleAssistant, "ignored", ""),
				chunk("", "Hello", ""),
				chunk("", ", world", ""),
			},
			want: "Hello, world",
		},
		{
			name: "stop completes",
			chunks: []chatgpt.ChatCompletionResponse{
				chunk("", "Hi", ""),
				chunk("", " there", "STOP"),
				chunk("", " never", ""),
			},
			want: "Hi",
			done: true,
		},
		{
			name: "other finish reasons append",
			chunks: []chatgpt.ChatCompletionResponse{
				chunk("", "cut", "length"),
			},
			want: "cut",
		},
		{
			name: "missing delta",
			chunks: []chatgpt.ChatCompletionResponse{
				{Choices: []chatgpt.ChatChoice{{Index: 0}}},
				chunk("", "ok", ""),
			},
			want: "ok",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var acc chatgpt.ChatAccumulator
			for _, c := range test.chunks {
				acc.Add(c)
			}
			must.Eq(t, test.want, acc.String())
			must.Eq(t, test.done, acc.Done())
		})
	}
}

func TestCollectChatStream(t *testing.T) {
	t.Run("done", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeEvents(w,
				`{"id":"1","choices":[{"index":0,"delta":{"role":"assistant","content":""}}]}`,
				`{"id":"1","choices":[{"index":0,"delta":{"content":"Why did"}}]}`,
				`{"id":"1","choices":[{"index":0,"delta":{"content":null}}]}`,
				`{"id":"1","choices":[{"index":0,"delta":{"content":" the gopher"}}]}`,
				`[DONE]`,
			)
		})

		stream, err := c.CreateChatStream(testCtx(t), chatgpt.NewChatRequest())
		must.NoError(t, err)

		text, err := chatgpt.CollectChatStream(testCtx(t), stream)
		must.NoError(t, err)
		must.Eq(t, "Why did the gopher", text)
	})

	t.Run("stop", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeEvents(w,
				`{"choices":[{"index":0,"delta":{"content":"done"}}]}`,
				`{"choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
			)
		})

		stream, err := c.CreateChatStream(testCtx(t), chatgpt.NewChatRequest())
		must.NoError(t, err)

		text, err := chatgpt.CollectChatStream(testCtx(t), stream)
		must.NoError(t, err)
		must.Eq(t, "done", text)
	})

	t.Run("clean end without done", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeEvents(w, `{"choices":[{"index":0,"delta":{"content":"eof"}}]}`)
		})

		stream, err := c.CreateChatStream(testCtx(t), chatgpt.NewChatRequest())
		must.NoError(t, err)

		text, err := chatgpt.CollectChatStream(testCtx(t), stream)
		must.NoError(t, err)
		must.Eq(t, "eof", text)
	})

	t.Run("failure", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeEvents(w,
				`{"choices":[{"index":0,"delta":{"content":"par"}}]}`,
				`{"error":{"message":"overloaded","type":"server_error"}}`,
			)
		})

		stream, err := c.CreateChatStream(testCtx(t), chatgpt.NewChatRequest())
		must.NoError(t, err)

		text, err := chatgpt.CollectChatStream(testCtx(t), stream)
		must.ErrorIs(t, err, chatgpt.ErrStreamClosed)

		var apiErr *chatgpt.APIError
		must.True(t, errors.As(err, &apiErr))
		must.Eq(t, "overloaded", apiErr.Message)
		must.Eq(t, "par", text)
	})

	t.Run("canceled", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeEvents(w,
				`{"choices":[{"index":0,"delta":{"content":"a"}}]}`,
				`{"choices":[{"index":0,"delta":{"content":"b"}}]}`,
			)
		})

		stream, err := c.CreateChatStream(testCtx(t), chatgpt.NewChatRequest())
		must.NoError(t, err)

		ctx, cancel := context.WithCancel(testCtx(t))
		cancel()

		_, err = chatgpt.CollectChatStream(ctx, stream)
		must.ErrorIs(t, err, chatgpt.ErrStreamClosed)
		must.ErrorIs(t, err, context.Canceled)
	})
}
