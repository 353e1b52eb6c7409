package chat

import (
	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
)

func renderMarkdown(s string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", errors.Wrap(err, "create markdown renderer")
	}

	out, err := r.Render(s)
	if err != nil {
		return "", errors.Wrap(err, "render markdown")
	}

	return out, nil
}
