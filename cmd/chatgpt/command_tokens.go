package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/picatz/chatgpt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTokensCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [text]",
		Short: "Count the tokens a text encodes to",
		Long:  "tokens counts the tokens of its arguments, or of stdin when there are none,\nfor the configured model.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "read stdin")
				}
				text = string(b)
			}

			n, err := chatgpt.CountTokens(a.cfg.Model, text)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func newModelsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "models",
		Short:   "List the models available to the API key",
		Args:    cobra.NoArgs,
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := a.client.ListModels(cmd.Context())
			if err != nil {
				return err
			}

			slices.SortFunc(models.Data, func(x, y chatgpt.ModelInfo) int {
				return strings.Compare(x.ID, y.ID)
			})

			for _, m := range models.Data {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", m.ID, styleFaint.Render(m.OwnedBy))
			}
			return nil
		},
	}
}
