package history

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/picatz/chatgpt"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

// Exchange is one user message and the reply it got.
type Exchange struct {
	Model            string              `json:"model,omitempty"`
	Request          chatgpt.ChatMessage `json:"request"`
	Response         chatgpt.ChatMessage `json:"response"`
	PromptTokens     int                 `json:"prompt_tokens,omitempty"`
	CompletionTokens int                 `json:"completion_tokens,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// Tokens is the total token count of the exchange.
func (e Exchange) Tokens() int {
	return e.PromptTokens + e.CompletionTokens
}

// Store is a backend of exchanges keyed by NewKey.
type Store = Backend[string, Exchange]

var (
	keyMu   sync.Mutex
	lastKey ksuid.KSUID
)

// NewKey returns a key that sorts after every key this process made before.
// Keys are KSUIDs, so they also sort by creation time across processes. The
// optional suffix, usually the API response ID, is appended after a dash.
func NewKey(suffix string) string {
	keyMu.Lock()
	id := ksuid.New()
	if ksuid.Compare(id, lastKey) <= 0 {
		id = lastKey.Next()
	}
	lastKey = id
	keyMu.Unlock()

	if suffix == "" {
		return id.String()
	}
	return fmt.Sprintf("%s-%s", id, suffix)
}

// Record stores ex under a new key and returns the key.
func Record(ctx context.Context, s Store, ex Exchange, responseID string) (string, error) {
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}

	key := NewKey(responseID)
	if err := s.Set(ctx, key, ex); err != nil {
		return "", errors.Wrap(err, "record exchange")
	}
	return key, nil
}

// Recent returns up to n of the newest exchanges, oldest first.
func Recent(ctx context.Context, s Store, n int) ([]Exchange, error) {
	if n <= 0 {
		return nil, nil
	}

	entries, _, err := s.List(ctx, ListOptions[string]{Limit: n, Reverse: true})
	if err != nil {
		return nil, errors.Wrap(err, "list recent exchanges")
	}

	var out []Exchange
	for _, ex := range entries {
		out = append(out, ex)
	}
	slices.Reverse(out)
	return out, nil
}

// Clear deletes every exchange and flushes the store. It returns how many
// were deleted.
func Clear(ctx context.Context, s Store) (int, error) {
	var (
		deleted int
		next    *string
	)

	for {
		entries, token, err := s.List(ctx, ListOptions[string]{Limit: 100, Start: next})
		if err != nil {
			return deleted, errors.Wrap(err, "list exchanges")
		}

		var keys []string
		for key := range entries {
			keys = append(keys, key)
		}

		for _, key := range keys {
			if err := s.Delete(ctx, key); err != nil {
				return deleted, errors.Wrapf(err, "delete exchange %s", key)
			}
			deleted++
		}

		if token == nil {
			break
		}
		next = token
	}

	return deleted, errors.Wrap(s.Flush(ctx), "flush exchanges")
}
