// Package historytest holds the conformance suite every history backend
// must pass.
package historytest

import (
	"slices"
	"testing"

	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/internal/history"
	"github.com/shoenig/test/must"
)

func keys[V any](t *testing.T, b history.Backend[string, V], opts history.ListOptions[string]) ([]string, *string) {
	t.Helper()

	entries, next, err := b.List(t.Context(), opts)
	must.NoError(t, err)

	var out []string
	for k := range entries {
		out = append(out, k)
	}
	return out, next
}

// BackendSuite tests a string backend, using the provided backend instance
// to perform the tests.
func BackendSuite(t *testing.T, backend history.Backend[string, string]) {
	t.Helper()

	ctx := t.Context()

	_, ok, err := backend.Get(ctx, "missing")
	must.NoError(t, err)
	must.False(t, ok)

	for _, k := range []string{"c", "a", "d", "b"} {
		must.NoError(t, backend.Set(ctx, k, "value-"+k))
	}
	must.NoError(t, backend.Set(ctx, "a", "updated"))

	value, ok, err := backend.Get(ctx, "a")
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "updated", value)

	// Forward pages.
	page, next := keys(t, backend, history.ListOptions[string]{Limit: 3})
	must.Eq(t, []string{"a", "b", "c"}, page)
	must.NotNil(t, next)
	must.Eq(t, "d", *next)

	page, next = keys(t, backend, history.ListOptions[string]{Limit: 3, Start: next})
	must.Eq(t, []string{"d"}, page)
	must.Nil(t, next)

	// Reverse pages.
	page, next = keys(t, backend, history.ListOptions[string]{Limit: 2, Reverse: true})
	must.Eq(t, []string{"d", "c"}, page)
	must.NotNil(t, next)
	must.Eq(t, "b", *next)

	page, next = keys(t, backend, history.ListOptions[string]{Limit: 2, Reverse: true, Start: next})
	must.Eq(t, []string{"b", "a"}, page)
	must.Nil(t, next)

	// A start key that is not stored begins at its neighbor.
	start := "bb"
	page, _ = keys(t, backend, history.ListOptions[string]{Start: &start})
	must.Eq(t, []string{"c", "d"}, page)

	page, _ = keys(t, backend, history.ListOptions[string]{Start: &start, Reverse: true})
	must.Eq(t, []string{"b", "a"}, page)

	must.NoError(t, backend.Delete(ctx, "b"))
	must.NoError(t, backend.Delete(ctx, "not-there"))

	page, _ = keys(t, backend, history.ListOptions[string]{})
	must.Eq(t, []string{"a", "c", "d"}, page)

	must.NoError(t, backend.Flush(ctx))
}

// ExchangeSuite tests recording and reading chat exchanges.
func ExchangeSuite(t *testing.T, store history.Store) {
	t.Helper()

	ctx := t.Context()

	var recorded []string
	for i, q := range []string{"one", "two", "three"} {
		key, err := history.Record(ctx, store, history.Exchange{
			Model:            chatgpt.ModelGPT35Turbo,
			Request:          chatgpt.ChatMessage{Role: chatgpt.ChatRoleUser, Content: q},
			Response:         chatgpt.ChatMessage{Role: chatgpt.ChatRoleAssistant, Content: "re: " + q},
			PromptTokens:     i + 1,
			CompletionTokens: 1,
		}, "chatcmpl-"+q)
		must.NoError(t, err)
		recorded = append(recorded, key)
	}
	must.True(t, slices.IsSorted(recorded))

	ex, ok, err := store.Get(ctx, recorded[0])
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "one", ex.Request.Content)
	must.Eq(t, 2, ex.Tokens())
	must.False(t, ex.CreatedAt.IsZero())

	recent, err := history.Recent(ctx, store, 2)
	must.NoError(t, err)
	must.SliceLen(t, 2, recent)
	must.Eq(t, "two", recent[0].Request.Content)
	must.Eq(t, "re: three", recent[1].Response.Content)

	n, err := history.Clear(ctx, store)
	must.NoError(t, err)
	must.Eq(t, 3, n)

	recent, err = history.Recent(ctx, store, 10)
	must.NoError(t, err)
	must.SliceEmpty(t, recent)
}
