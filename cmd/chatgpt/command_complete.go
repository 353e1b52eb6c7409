package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/session"
	"github.com/spf13/cobra"
)

func newCompleteCommand(a *app) *cobra.Command {
	var (
		maxTokens   int
		temperature float64
		stream      bool
	)

	cmd := &cobra.Command{
		Use:     "complete <prompt>",
		Short:   "Complete a text prompt",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := chatgpt.NewCompletionRequest(strings.Join(args, " "))
			req.Model = a.modelOr(req.Model)
			req.MaxTokens = maxTokens
			req.Temperature = temperature

			out := cmd.OutOrStdout()

			if !stream {
				resp, err := a.sess.Completion(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, strings.Trim(resp.Text(), "\n"))
				return nil
			}

			var failure error
			es, err := a.sess.CompletionStream(cmd.Context(), req, session.ListenerFuncs[chatgpt.CompletionResponse]{
				Event: func(chunk chatgpt.CompletionResponse) {
					io.WriteString(out, chunk.Text())
				},
				Failure: func(err error) {
					failure = err
				},
			})
			if err != nil {
				return err
			}
			<-es.Done()

			fmt.Fprintln(out)
			return failure
		},
	}

	cmd.Flags().IntVar(&maxTokens, "max-tokens", 2048, "maximum number of tokens to generate")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.9, "sampling temperature")
	cmd.Flags().BoolVar(&stream, "stream", false, "stream the completion as it is generated")

	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var instruction string

	cmd := &cobra.Command{
		Use:     "edit <input>",
		Short:   "Edit text following an instruction",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := chatgpt.NewEditRequest(strings.Join(args, " "), instruction)
			req.Model = a.modelOr(req.Model)

			resp, err := a.sess.Edit(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), strings.Trim(resp.Text(), "\n"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&instruction, "instruction", "i", "", "how to edit the input")
	cmd.MarkFlagRequired("instruction")

	return cmd
}
