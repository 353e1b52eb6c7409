package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/picatz/chatgpt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type imageFlags struct {
	n      int
	size   string
	format string
	output string
}

func (f *imageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.n, "n", "n", 1, "number of images to generate")
	cmd.Flags().StringVar(&f.size, "size", chatgpt.ImageSize1024, "image size")
	cmd.Flags().StringVar(&f.format, "format", chatgpt.ImageFormatURL, "response format: url or b64_json")
	cmd.Flags().StringVarP(&f.output, "output", "o", ".", "directory b64_json images are written to")
}

func newImageCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Generate and edit images with DALL·E",
	}

	cmd.AddCommand(newImageGenerateCommand(a), newImageEditCommand(a))
	return cmd
}

func newImageGenerateCommand(a *app) *cobra.Command {
	var flags imageFlags

	cmd := &cobra.Command{
		Use:     "generate <prompt>",
		Short:   "Generate images from a prompt",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := chatgpt.NewImageRequest(strings.Join(args, " "))
			req.Model = a.model
			req.N = flags.n
			req.Size = flags.size
			req.ResponseFormat = flags.format

			resp, err := a.sess.GenerateImages(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printImages(cmd.OutOrStdout(), resp, flags.output)
		},
	}

	flags.register(cmd)
	return cmd
}

func newImageEditCommand(a *app) *cobra.Command {
	var (
		flags imageFlags
		mask  string
	)

	cmd := &cobra.Command{
		Use:     "edit <image.png> <prompt>",
		Short:   "Edit a square PNG image following a prompt",
		Args:    cobra.MinimumNArgs(2),
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.sess.EditImage(cmd.Context(), args[0], mask, &chatgpt.ImageEditRequest{
				Prompt:         strings.Join(args[1:], " "),
				N:              flags.n,
				Size:           flags.size,
				ResponseFormat: flags.format,
			})
			if err != nil {
				return err
			}
			return printImages(cmd.OutOrStdout(), resp, flags.output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&mask, "mask", "", "PNG whose transparent areas mark where to edit")
	return cmd
}

// printImages prints image URLs and revised prompts, and writes base64
// images to dir.
func printImages(w io.Writer, resp *chatgpt.ImageResponse, dir string) error {
	for i, data := range resp.Data {
		if data.RevisedPrompt != "" {
			rp, err := glamour.Render(data.RevisedPrompt, "dark")
			if err != nil {
				return errors.Wrap(err, "render revised prompt")
			}
			fmt.Fprintln(w, rp)
		}

		if data.URL != "" {
			fmt.Fprintln(w, data.URL)
			continue
		}

		if data.B64JSON == "" {
			continue
		}

		b, err := base64.StdEncoding.DecodeString(data.B64JSON)
		if err != nil {
			return errors.Wrapf(err, "decode image %d", i)
		}

		path := filepath.Join(dir, fmt.Sprintf("image-%d-%d.png", resp.Created, i))
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return errors.Wrapf(err, "write image %d", i)
		}
		fmt.Fprintln(w, styleFaint.Render("wrote"), path)
	}

	return nil
}
