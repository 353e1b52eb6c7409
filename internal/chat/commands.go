package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/internal/history"
)

// CommandFunc runs a command for the given input line.
type CommandFunc func(ctx context.Context, s *Session, input string)

// Command is a line the session handles itself instead of sending it to the
// model.
type Command struct {
	// Name of the command. When Matches is nil the command runs if the
	// trimmed input equals Name.
	Name string

	Description string

	// Matches reports whether the input selects this command.
	Matches func(input string) bool

	Run CommandFunc
}

func (c Command) matches(input string) bool {
	if c.Matches != nil {
		return c.Matches(input)
	}
	return strings.TrimSpace(input) == c.Name
}

var (
	styleBold  = lipgloss.NewStyle().Bold(true)
	styleFaint = lipgloss.NewStyle().Faint(true)
)

const defaultHistoryLines = 10

// builtinCommands manage the conversation and the stored history.
var builtinCommands = []Command{
	{
		Name:        "exit",
		Description: "Exit the chat session.",
		// Handled by RunOnce, listed for help and completion.
	},
	{
		Name:        "clear",
		Description: "Clear the terminal screen.",
		Run: func(ctx context.Context, s *Session, input string) {
			s.clearScreen()
		},
	},
	{
		Name:        "erase",
		Description: "Clear the chat history.",
		Run: func(ctx context.Context, s *Session, input string) {
			s.Messages = nil
			s.TokensUsed = 0
			s.out.WriteString("Chat history cleared.\n")
		},
	},
	{
		Name:        "erase all",
		Description: "Clear the chat history and stored exchanges.",
		Run: func(ctx context.Context, s *Session, input string) {
			s.out.WriteString("\nAre you sure you want to clear the chat history? (y/n): ")
			s.out.Flush()

			confirmation, err := s.Terminal.ReadLine()
			if err != nil {
				fmt.Fprintf(s.out, "Error reading confirmation: %s\n", err)
				return
			}

			if strings.ToLower(strings.TrimSpace(confirmation)) != "y" {
				s.out.WriteString("\nChat history not cleared.\n")
				return
			}

			s.Messages = nil
			s.TokensUsed = 0

			n, err := history.Clear(ctx, s.Store)
			if err != nil {
				fmt.Fprintf(s.out, "Error clearing stored history: %s\n", err)
				return
			}
			fmt.Fprintf(s.out, "\nChat history cleared, %d stored exchanges deleted.\n\n", n)
		},
	},
	{
		Name:        "delete",
		Description: "Delete the last message.",
		Run: func(ctx context.Context, s *Session, input string) {
			if len(s.Messages) > 0 {
				s.Messages = s.Messages[:len(s.Messages)-1]
			}
		},
	},
	{
		Name:        "copy",
		Description: "Copy the last message to the clipboard.",
		Run: func(ctx context.Context, s *Session, input string) {
			if len(s.Messages) == 0 {
				return
			}
			if err := writeClipboard(s.Messages[len(s.Messages)-1].Content); err != nil {
				fmt.Fprintf(s.out, "Clipboard error: %s\n", err)
			}
		},
	},
	{
		Name:        "system",
		Description: "Set the system context, as 'system: <text>'.",
		Matches: func(input string) bool {
			return strings.HasPrefix(strings.TrimSpace(input), "system:")
		},
		Run: func(ctx context.Context, s *Session, input string) {
			content := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "system:"))
			s.Messages = append(s.Messages, chatgpt.ChatMessage{
				Role:    chatgpt.ChatRoleSystem,
				Content: content,
			})
			s.out.WriteString("System context updated.\n")
		},
	},
	{
		Name:        "model",
		Description: "Show or change the model, as 'model <name>'.",
		Matches: func(input string) bool {
			fields := strings.Fields(input)
			return len(fields) > 0 && len(fields) <= 2 && fields[0] == "model"
		},
		Run: func(ctx context.Context, s *Session, input string) {
			if fields := strings.Fields(input); len(fields) == 2 {
				s.Model = fields[1]
			}
			fmt.Fprintf(s.out, "Model: %s\n", s.Model)
		},
	},
	{
		Name:        "help",
		Description: "Show help for commands.",
		Run: func(ctx context.Context, s *Session, input string) {
			s.ShowHelp()
		},
	},
	{
		Name:        "tokens",
		Description: "Show the number of tokens used.",
		Run: func(ctx context.Context, s *Session, input string) {
			fmt.Fprintf(s.out, "Tokens used: %d\n", s.TokensUsed)
		},
	},
	{
		Name:        "messages",
		Description: "Show the chat messages currently sent to the model.",
		Run: func(ctx context.Context, s *Session, input string) {
			for _, msg := range s.Messages {
				fmt.Fprintf(s.out, "\n\t%s: %s\n", msg.Role, msg.Content)
			}
		},
	},
	{
		Name:        "history",
		Description: "Show stored exchanges, as 'history [n]'.",
		Matches: func(input string) bool {
			fields := strings.Fields(input)
			switch {
			case len(fields) == 1:
				return fields[0] == "history"
			case len(fields) == 2 && fields[0] == "history":
				_, err := strconv.Atoi(fields[1])
				return err == nil
			default:
				return false
			}
		},
		Run: func(ctx context.Context, s *Session, input string) {
			n := defaultHistoryLines
			if fields := strings.Fields(input); len(fields) == 2 {
				n, _ = strconv.Atoi(fields[1])
			}

			if n <= 0 {
				s.out.WriteString("Invalid number of exchanges to show.\n")
				return
			}

			exchanges, err := history.Recent(ctx, s.Store, n)
			if err != nil {
				fmt.Fprintf(s.out, "Error listing history: %s\n", err)
				return
			}

			for _, ex := range exchanges {
				fmt.Fprintf(s.out, "\t%s (%s): %s\n\n", ex.Request.Role, ex.Model, ex.Request.Content)
				fmt.Fprintf(s.out, "\t%s (%s): %s\n\n", ex.Response.Role, ex.Model, ex.Response.Content)
				fmt.Fprintf(s.out, "\tTokens used: %d\n\n", ex.Tokens())
				s.out.WriteString("---\n")
			}
		},
	},
}
