// Package chat implements the interactive terminal chat mode of the command
// line client.
package chat

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/internal/history"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const (
	// DefaultSummarizeAt is the token count after which the conversation is
	// replaced by a summary of itself.
	DefaultSummarizeAt = 4096

	// restoredExchanges is how many stored exchanges seed a new session.
	restoredExchanges = 10

	maxIncludeBytes = 1 << 20

	// DefaultSummarizeRetryDelay is the wait between rate limited summary
	// requests.
	DefaultSummarizeRetryDelay = 5 * time.Second

	summarizeAttempts = 5
)

// Session holds the state of one interactive chat: terminal I/O, the
// messages sent with each request and the store that keeps past exchanges.
type Session struct {
	Client *chatgpt.Client
	Model  string
	Store  history.Store

	Messages    []chatgpt.ChatMessage
	TokensUsed  int
	SummarizeAt int

	// SummarizeRetryDelay is the wait between summary requests that were
	// rate limited.
	SummarizeRetryDelay time.Duration

	// Plain prints replies as they stream instead of rendering them as
	// markdown once complete.
	Plain bool

	// HTTPClient fetches #url: references.
	HTTPClient *http.Client

	// Clipboard returns the text that replaces <clipboard> in the input.
	Clipboard func() (string, error)

	Logger logrus.FieldLogger

	Terminal   *term.Terminal
	TermWidth  int
	TermHeight int
	Commands   []Command

	out *bufio.Writer
}

// NewSession creates a chat session reading from r and writing to w.
//
// When w is a terminal it is put in raw mode and the returned function
// restores it. The newest stored exchanges are loaded as context.
func NewSession(ctx context.Context, client *chatgpt.Client, model string, r io.Reader, w io.Writer, store history.Store) (*Session, func(), error) {
	var (
		restore    = func() {}
		termWidth  = 80
		termHeight = 24
	)

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())

		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return nil, nil, errors.Wrap(err, "set terminal to raw mode")
		}

		restore = func() {
			if err := term.Restore(fd, oldState); err != nil {
				fmt.Fprintf(os.Stderr, "\nfailed to restore terminal: %s\n", err)
			}
		}

		termWidth, termHeight, err = term.GetSize(fd)
		if err != nil {
			restore()
			return nil, nil, errors.Wrap(err, "get terminal size")
		}
	}

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{r, w}, "")
	t.SetSize(termWidth, termHeight)

	s := &Session{
		Client:              client,
		Model:               model,
		Store:               store,
		SummarizeAt:         DefaultSummarizeAt,
		SummarizeRetryDelay: DefaultSummarizeRetryDelay,
		HTTPClient:          http.DefaultClient,
		Clipboard:           readClipboard,
		Logger:              client.Logger,
		Terminal:            t,
		TermWidth:           termWidth,
		TermHeight:          termHeight,
		Commands:            builtinCommands,
		out:                 bufio.NewWriter(t),
	}

	t.AutoCompleteCallback = s.autoComplete

	if err := s.loadHistory(ctx); err != nil {
		restore()
		return nil, nil, errors.Wrap(err, "load chat history")
	}

	return s, restore, nil
}

// ShowHelp lists the commands and the input references.
func (s *Session) ShowHelp() {
	s.out.WriteString(styleBold.Render("Commands") + " " + styleFaint.Render("(tab complete)") + "\n\n")

	for _, cmd := range s.Commands {
		s.out.WriteString("- " + styleFaint.Render(cmd.Name) + ": " + cmd.Description + "\n")
	}

	s.out.WriteString("\nUse '" + styleFaint.Render("<clipboard>") + "' to include clipboard content in a message.\n")
	s.out.WriteString("Use '" + styleFaint.Render("#file:path") + "' to include file content in a message.\n")
	s.out.WriteString("Use '" + styleFaint.Render("#url:path") + "' to include URL content in a message.\n\n")

	s.out.Flush()
}

// Run reads and answers lines until "exit", end of input or a fatal error.
func (s *Session) Run(ctx context.Context) {
	s.clearScreen()

	if len(s.Messages) == 0 {
		s.out.WriteString(styleBold.Render("Welcome to ChatGPT chat mode!") + "\n\n")
		s.ShowHelp()
	}

	for {
		done, err := s.RunOnce(ctx)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %s\n", err)
			s.out.Flush()
		}
		if done {
			break
		}
	}

	if err := s.Store.Flush(ctx); err != nil {
		fmt.Fprintf(s.out, "Failed to save chat history: %s\n", err)
		s.out.Flush()
	}
}

// RunOnce handles a single input line. It reports whether the session is
// over; a non-nil error with done false is not fatal.
func (s *Session) RunOnce(ctx context.Context) (done bool, err error) {
	s.out.WriteString("‣ ")
	s.out.Flush()

	input, err := s.Terminal.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return true, errors.Wrap(err, "read input")
	}

	if strings.TrimSpace(input) == "exit" {
		return true, nil
	}
	if strings.TrimSpace(input) == "" {
		return false, nil
	}

	if s.runCommand(ctx, input) {
		return false, nil
	}

	input, err = s.expandInput(ctx, input)
	if err != nil {
		return false, err
	}

	if err := s.send(ctx, chatgpt.ChatMessage{Role: chatgpt.ChatRoleUser, Content: input}); err != nil {
		return false, errors.Wrap(err, "chat request")
	}

	if err := s.maybeSummarize(ctx); err != nil {
		return false, errors.Wrap(err, "summarize")
	}

	return false, nil
}

func (s *Session) runCommand(ctx context.Context, input string) bool {
	for _, cmd := range s.Commands {
		if cmd.Run == nil || !cmd.matches(input) {
			continue
		}
		cmd.Run(ctx, s, input)
		s.out.Flush()
		return true
	}
	return false
}

// send streams the reply to msg, prints it and records the exchange.
func (s *Session) send(ctx context.Context, msg chatgpt.ChatMessage) error {
	s.Messages = append(s.Messages, msg)

	promptTokens, err := chatgpt.CountMessageTokens(s.Model, s.Messages)
	if err != nil {
		s.Logger.WithError(err).Debug("count prompt tokens")
	}

	req := chatgpt.NewChatRequest(s.Messages...)
	req.Model = s.Model

	stream, err := s.Client.CreateChatStream(ctx, req)
	if err != nil {
		s.Messages = s.Messages[:len(s.Messages)-1]
		return err
	}
	defer stream.Close()

	var (
		acc     chatgpt.ChatAccumulator
		id      string
		printed int
	)
	for stream.Next() {
		chunk := stream.Current()
		id = cmp.Or(id, chunk.ID)
		complete := acc.Add(chunk)

		if s.Plain {
			text := acc.String()
			s.out.WriteString(text[printed:])
			s.out.Flush()
			printed = len(text)
		}

		if complete {
			break
		}
	}
	if err := stream.Err(); err != nil {
		s.Messages = s.Messages[:len(s.Messages)-1]
		return fmt.Errorf("%w: %w", chatgpt.ErrStreamClosed, err)
	}

	reply := chatgpt.ChatMessage{Role: chatgpt.ChatRoleAssistant, Content: acc.String()}
	s.printReply(reply.Content)
	s.Messages = append(s.Messages, reply)

	completionTokens, err := chatgpt.CountTokens(s.Model, reply.Content)
	if err != nil {
		s.Logger.WithError(err).Debug("count completion tokens")
	}
	s.TokensUsed += promptTokens + completionTokens

	key, err := history.Record(ctx, s.Store, history.Exchange{
		Model:            s.Model,
		Request:          msg,
		Response:         reply,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}, id)
	if err != nil {
		return err
	}

	s.Logger.WithFields(logrus.Fields{
		"key":    key,
		"tokens": promptTokens + completionTokens,
	}).Debug("recorded exchange")

	return nil
}

func (s *Session) printReply(text string) {
	if s.Plain {
		s.out.WriteString("\n\n")
		s.out.Flush()
		return
	}

	rendered, err := renderMarkdown(strings.TrimRight(text, "\n"), s.TermWidth)
	if err != nil {
		s.Logger.WithError(err).Debug("render reply")
		rendered = text + "\n\n"
	}

	s.out.WriteString(rendered)
	s.out.Flush()
}

// maybeSummarize replaces the conversation with a summary once the token
// count reaches SummarizeAt.
func (s *Session) maybeSummarize(ctx context.Context) error {
	if s.TokensUsed < cmp.Or(s.SummarizeAt, DefaultSummarizeAt) {
		return nil
	}

	summary, tokens, err := s.summarize(ctx)
	if err != nil {
		return err
	}

	s.Messages = []chatgpt.ChatMessage{{
		Role:    chatgpt.ChatRoleSystem,
		Content: "Summary of previous messages for context: " + summary,
	}}
	s.TokensUsed = tokens

	s.out.WriteString("\nChat history summarized.\n")
	s.out.Flush()
	return nil
}

// summarize asks the model for a recap of the conversation, retrying while
// the API reports rate limiting.
func (s *Session) summarize(ctx context.Context) (string, int, error) {
	var b strings.Builder
	for _, m := range s.Messages {
		if m.Role == chatgpt.ChatRoleSystem {
			continue
		}
		b.WriteString(m.Role + ":\n" + m.Content + "\n")
	}

	req := chatgpt.NewChatRequest(
		chatgpt.ChatMessage{
			Role: chatgpt.ChatRoleSystem,
			Content: strings.Join([]string{
				"You are an expert at summarizing conversations.",
				"Write a detailed recap of the given conversation, including all important details.",
				"Ignore irrelevant content.",
			}, " "),
		},
		chatgpt.ChatMessage{Role: chatgpt.ChatRoleUser, Content: b.String()},
	)
	req.Model = s.Model

	for attempt := 1; ; attempt++ {
		resp, err := s.Client.CreateChat(ctx, req)
		if err == nil {
			msg, _ := resp.FirstMessage()
			return msg.Content, resp.Usage.TotalTokens, nil
		}

		if attempt >= summarizeAttempts || !chatgpt.IsAPIError(err, http.StatusTooManyRequests) {
			return "", 0, err
		}

		s.Logger.WithField("attempt", attempt).Debug("summary rate limited, retrying")

		select {
		case <-ctx.Done():
			return "", 0, ctx.Err()
		case <-time.After(cmp.Or(s.SummarizeRetryDelay, DefaultSummarizeRetryDelay)):
		}
	}
}

func (s *Session) clearScreen() {
	s.out.WriteString("\033[2J") // clear
	s.out.WriteString("\033[H")  // home
	s.out.Flush()
}

// loadHistory seeds the conversation with the newest stored exchanges.
func (s *Session) loadHistory(ctx context.Context) error {
	exchanges, err := history.Recent(ctx, s.Store, restoredExchanges)
	if err != nil {
		return err
	}

	for _, ex := range exchanges {
		s.TokensUsed += ex.Tokens()
		s.Messages = append(s.Messages, ex.Request, ex.Response)
	}

	return s.maybeSummarize(ctx)
}

// autoComplete completes command names on tab.
func (s *Session) autoComplete(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' {
		return line, pos, false
	}

	for _, cmd := range s.Commands {
		if strings.HasPrefix(cmd.Name, line) {
			return cmd.Name, len(cmd.Name), true
		}
	}
	return line, pos, false
}
