package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/internal/config"
	"github.com/shoenig/test/must"
)

// isolate clears the environment Load reads so tests don't see the
// developer's settings.
func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", "")
	for _, k := range []string{"OPENAI_API_KEY", "CHATGPT_API_KEY", "CHATGPT_API_HOST", "CHATGPT_MODEL", "CHATGPT_TIMEOUT", "CHATGPT_LOG_LEVEL", "CHATGPT_ORGANIZATION", "CHATGPT_HISTORY_PATH"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func TestLoad_defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := config.Load("")
	must.NoError(t, err)
	must.Eq(t, chatgpt.DefaultBaseURL, cfg.APIHost)
	must.Eq(t, chatgpt.ModelGPT35Turbo, cfg.Model)
	must.Eq(t, chatgpt.DefaultTimeout, cfg.Timeout)
	must.Eq(t, "warn", cfg.LogLevel)
	must.Eq(t, filepath.Join(home, ".chatgpt-history"), cfg.HistoryPath)
	must.ErrorIs(t, cfg.Validate(), config.ErrMissingAPIKey)
}

func TestLoad_file(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	must.NoError(t, os.WriteFile(path, []byte(`
api_key: sk-file
api_host: https://proxy.example.com/
model: gpt-4
timeout: 30s
log_level: debug
`), 0o600))

	cfg, err := config.Load(path)
	must.NoError(t, err)
	must.Eq(t, "sk-file", cfg.APIKey)
	must.Eq(t, "https://proxy.example.com/", cfg.APIHost)
	must.Eq(t, "gpt-4", cfg.Model)
	must.Eq(t, 30*time.Second, cfg.Timeout)
	must.Eq(t, "debug", cfg.LogLevel)
	must.NoError(t, cfg.Validate())
}

func TestLoad_homeFile(t *testing.T) {
	home := isolate(t)

	must.NoError(t, os.WriteFile(filepath.Join(home, config.DefaultFile), []byte("model: gpt-4o\n"), 0o600))

	cfg, err := config.Load("")
	must.NoError(t, err)
	must.Eq(t, "gpt-4o", cfg.Model)
}

func TestLoad_env(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	must.NoError(t, os.WriteFile(path, []byte("api_key: sk-file\nmodel: gpt-4\n"), 0o600))

	t.Setenv("CHATGPT_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := config.Load(path)
	must.NoError(t, err)
	must.Eq(t, "gpt-4o-mini", cfg.Model)
	must.Eq(t, "sk-openai", cfg.APIKey)

	t.Setenv("CHATGPT_API_KEY", "sk-chatgpt")

	cfg, err = config.Load(path)
	must.NoError(t, err)
	must.Eq(t, "sk-chatgpt", cfg.APIKey)
}

func TestLoad_missingFile(t *testing.T) {
	isolate(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	must.Error(t, err)
}
