package main

import (
	"fmt"
	"strings"

	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/embeddings"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newEmbedCommand(a *app) *cobra.Command {
	var (
		rank   bool
		metric string
	)

	cmd := &cobra.Command{
		Use:   "embed <text>...",
		Short: "Create embeddings, or rank texts by similarity to a query",
		Long: "embed prints the dimensions of each input's embedding.\n\n" +
			"With --rank, the first argument is the query and the rest are ranked by\n" +
			"how close their embeddings are to it.",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := embeddings.ParseMetric(metric)
			if err != nil {
				return err
			}
			if rank && len(args) < 2 {
				return errors.New("--rank needs a query and at least one candidate")
			}

			req := chatgpt.NewEmbeddingRequest(args...)
			req.Model = a.modelOr(req.Model)

			resp, err := a.sess.EmbeddingsFor(cmd.Context(), req)
			if err != nil {
				return err
			}

			vectors := resp.Vectors()
			if len(vectors) != len(args) {
				return errors.Errorf("got %d embeddings for %d inputs", len(vectors), len(args))
			}

			out := cmd.OutOrStdout()

			if !rank {
				for i, v := range vectors {
					fmt.Fprintf(out, "%s %s\n", numberColor.Render(fmt.Sprintf("%5d", len(v))), args[i])
				}
				return nil
			}

			matches, err := embeddings.Rank(vectors[0], vectors[1:], m)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s %s\n", styleBold.Render("query:"), args[0])
			for _, match := range matches {
				fmt.Fprintf(out, "%s %s\n", numberColor.Render(fmt.Sprintf("%.4f", match.Score)), args[match.Index+1])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rank, "rank", false, "rank the remaining arguments by similarity to the first")
	cmd.Flags().StringVar(&metric, "metric", "cosine", "ranking metric, one of "+strings.Join(embeddings.MetricNames(), ", "))

	return cmd
}
