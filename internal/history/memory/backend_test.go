package memory_test

import (
	"testing"

	"github.com/picatz/chatgpt/internal/history"
	"github.com/picatz/chatgpt/internal/history/historytest"
	"github.com/picatz/chatgpt/internal/history/memory"
)

func TestBackend(t *testing.T) {
	historytest.BackendSuite(t, memory.NewBackend[string, string]())
	historytest.ExchangeSuite(t, memory.NewBackend[string, history.Exchange]())
}
