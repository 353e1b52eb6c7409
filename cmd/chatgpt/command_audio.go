package main

import (
	"fmt"
	"strings"

	"github.com/picatz/chatgpt"
	"github.com/spf13/cobra"
)

type audioFlags struct {
	prompt      string
	format      string
	temperature float64
}

func (f *audioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.prompt, "prompt", "", "text to guide the model's style")
	cmd.Flags().StringVar(&f.format, "format", chatgpt.AudioFormatText, "output format: json, text, srt, verbose_json or vtt")
	cmd.Flags().Float64Var(&f.temperature, "temperature", 0.2, "sampling temperature")
}

func newAudioCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Transcribe or translate audio with Whisper",
	}

	var (
		transcribeFlags audioFlags
		language        string
	)
	transcribe := &cobra.Command{
		Use:     "transcribe <file>",
		Short:   "Transcribe audio into text in its own language",
		Args:    cobra.ExactArgs(1),
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.sess.Transcribe(cmd.Context(), args[0], &chatgpt.TranscriptionRequest{
				Model:          a.modelOr(chatgpt.ModelWhisper1),
				Prompt:         transcribeFlags.prompt,
				ResponseFormat: transcribeFlags.format,
				Temperature:    transcribeFlags.temperature,
				Language:       language,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(resp.Text, "\n"))
			return nil
		},
	}
	transcribeFlags.register(transcribe)
	transcribe.Flags().StringVar(&language, "language", "", "ISO-639-1 language of the audio")

	var translateFlags audioFlags
	translate := &cobra.Command{
		Use:     "translate <file>",
		Short:   "Translate audio into English text",
		Args:    cobra.ExactArgs(1),
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.sess.Translate(cmd.Context(), args[0], &chatgpt.TranslationRequest{
				Model:          a.modelOr(chatgpt.ModelWhisper1),
				Prompt:         translateFlags.prompt,
				ResponseFormat: translateFlags.format,
				Temperature:    translateFlags.temperature,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(resp.Text, "\n"))
			return nil
		},
	}
	translateFlags.register(translate)

	cmd.AddCommand(transcribe, translate)
	return cmd
}
