package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/picatz/chatgpt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newFilesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage uploaded files",
	}

	list := &cobra.Command{
		Use:     "list",
		Short:   "List uploaded files",
		Args:    cobra.NoArgs,
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.sess.Files(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tBYTES\tPURPOSE\tCREATED\tFILENAME")
			for _, f := range files.Data {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", f.ID, f.Bytes, f.Purpose, created(f.CreatedAt), f.Filename)
			}
			return tw.Flush()
		},
	}

	var purpose string
	upload := &cobra.Command{
		Use:     "upload <path>",
		Short:   "Upload a file",
		Args:    cobra.ExactArgs(1),
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.sess.UploadFileFor(cmd.Context(), purpose, args[0])
			if err != nil {
				return err
			}
			printFile(cmd.OutOrStdout(), f)
			return nil
		},
	}
	upload.Flags().StringVar(&purpose, "purpose", chatgpt.PurposeFineTune, "intended purpose of the file")

	info := &cobra.Command{
		Use:     "info <file-id>",
		Short:   "Show a file's details",
		Args:    cobra.ExactArgs(1),
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.sess.FileInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printFile(cmd.OutOrStdout(), f)
			return nil
		},
	}

	content := &cobra.Command{
		Use:     "content <file-id>",
		Short:   "Write a file's content to stdout",
		Args:    cobra.ExactArgs(1),
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := a.client.GetFileContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer body.Close()

			_, err = io.Copy(cmd.OutOrStdout(), body)
			return errors.Wrap(err, "copy file content")
		},
	}

	del := &cobra.Command{
		Use:     "delete <file-id>",
		Short:   "Delete a file",
		Args:    cobra.ExactArgs(1),
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.sess.DeleteFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !resp.Deleted {
				fmt.Fprintln(cmd.OutOrStdout(), styleWarning.Render("not deleted:"), resp.ID)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", resp.ID)
			return nil
		},
	}

	cmd.AddCommand(list, upload, info, content, del)
	return cmd
}

func created(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.DateTime)
}

func printFile(w io.Writer, f *chatgpt.File) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", "id", f.ID)
	fmt.Fprintf(tw, "%s\t%s\n", "filename", f.Filename)
	fmt.Fprintf(tw, "%s\t%d\n", "bytes", f.Bytes)
	fmt.Fprintf(tw, "%s\t%s\n", "purpose", f.Purpose)
	fmt.Fprintf(tw, "%s\t%s\n", "created", created(f.CreatedAt))
	if f.Status != "" {
		fmt.Fprintf(tw, "%s\t%s\n", "status", f.Status)
	}
	tw.Flush()
}
