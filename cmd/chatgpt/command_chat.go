package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/internal/chat"
	"github.com/picatz/chatgpt/internal/history"
	pebbleStorage "github.com/picatz/chatgpt/internal/history/pebble"
	"github.com/picatz/chatgpt/session"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// pebbleLogger routes pebble's own logging to logrus at debug level.
type pebbleLogger struct {
	log log.FieldLogger
}

func (l pebbleLogger) Infof(format string, args ...any) {
	l.log.Debugf(format, args...)
}

func (l pebbleLogger) Errorf(format string, args ...any) {
	l.log.Errorf(format, args...)
}

func (l pebbleLogger) Fatalf(format string, args ...any) {
	l.log.Fatalf(format, args...)
}

func (l pebbleLogger) Eventf(ctx context.Context, format string, args ...any) {}

func (l pebbleLogger) IsTracingEnabled(ctx context.Context) bool {
	return false
}

// openHistory opens the pebble history database, or an in-memory one when
// temporary is set.
func (a *app) openHistory(temporary bool) (*pebbleStorage.Backend[string, history.Exchange], error) {
	opts := &pebble.Options{
		LoggerAndTracer: pebbleLogger{log: a.log.WithField("component", "history")},
	}

	dir := a.cfg.HistoryPath
	if temporary {
		opts.FS = vfs.NewMem()
		dir = ""
	}

	store, err := pebbleStorage.NewBackend[string, history.Exchange](dir, opts, history.JSONCodec[history.Exchange]{})
	if err != nil {
		return nil, errors.Wrapf(err, "open history %s", dir)
	}
	return store, nil
}

func newChatCommand(a *app) *cobra.Command {
	var (
		temporary bool
		plain     bool
		system    string
	)

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Chat with a model, interactively or for a single prompt",
		Long: "Without arguments, chat starts an interactive session whose history is kept\n" +
			"between runs. With a prompt, the reply is streamed to stdout and chat exits.",
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return a.chatOnce(cmd.Context(), cmd.OutOrStdout(), system, strings.Join(args, " "))
			}

			store, err := a.openHistory(temporary)
			if err != nil {
				return err
			}
			defer store.Close(context.WithoutCancel(cmd.Context()))

			s, restore, err := chat.NewSession(cmd.Context(), a.client, a.cfg.Model, cmd.InOrStdin(), cmd.OutOrStdout(), store)
			if err != nil {
				return errors.Wrap(err, "create chat session")
			}
			defer restore()

			s.Plain = plain
			s.Logger = a.log
			if system != "" {
				s.Messages = append(s.Messages, chatgpt.ChatMessage{Role: chatgpt.ChatRoleSystem, Content: system})
			}

			s.Run(cmd.Context())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&temporary, "temporary", "t", false, "use a temporary in-memory history")
	cmd.Flags().BoolVar(&plain, "plain", false, "print replies as they stream instead of rendering markdown")
	cmd.Flags().StringVarP(&system, "system", "s", "", "system message sent before the conversation")

	return cmd
}

// chatOnce streams the reply to a single prompt to w.
func (a *app) chatOnce(ctx context.Context, w io.Writer, system, prompt string) error {
	var messages []chatgpt.ChatMessage
	if system != "" {
		messages = append(messages, chatgpt.ChatMessage{Role: chatgpt.ChatRoleSystem, Content: system})
	}
	messages = append(messages, chatgpt.ChatMessage{Role: chatgpt.ChatRoleUser, Content: prompt})

	req := chatgpt.NewChatRequest(messages...)
	req.Model = a.cfg.Model

	var (
		acc     chatgpt.ChatAccumulator
		printed int
		failure error
	)

	es, err := a.sess.ChatStream(ctx, req, session.ListenerFuncs[chatgpt.ChatCompletionResponse]{
		Event: func(chunk chatgpt.ChatCompletionResponse) {
			acc.Add(chunk)
			text := acc.String()
			io.WriteString(w, text[printed:])
			printed = len(text)
		},
		Failure: func(err error) {
			failure = err
		},
	})
	if err != nil {
		return err
	}
	<-es.Done()

	fmt.Fprintln(w)
	return failure
}
