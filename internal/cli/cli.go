// Package cli exposes the storage client as a set of cobra commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"s3simplified/internal/object"
	"s3simplified/internal/service"
)

// App carries what the commands need.
type App struct {
	Client        service.StorageClient
	ObjectOptions object.Options
	Out           io.Writer
}

// NewRootCmd builds the command tree over app.
func NewRootCmd(app *App) *cobra.Command {
	if app.Out == nil {
		app.Out = os.Stdout
	}
	root := &cobra.Command{
		Use:           "s3simplified",
		Short:         "Validated bucket and object operations on an S3-compatible store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		bucketsCmd(app),
		makeBucketCmd(app),
		removeBucketCmd(app),
		listCmd(app),
		putCmd(app),
		getCmd(app),
		linkCmd(app),
		removeCmd(app),
		moveCmd(app),
	)
	return root
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func bucketsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "buckets",
		Short: "List buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := app.Client.ListBuckets(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(app.Out, n)
			}
			return nil
		},
	}
}

func makeBucketCmd(app *App) *cobra.Command {
	var ifMissing bool
	cmd := &cobra.Command{
		Use:   "mb <bucket>",
		Short: "Create a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if ifMissing {
				_, err = app.Client.GetOrCreateBucket(cmd.Context(), args[0])
			} else {
				_, err = app.Client.CreateBucket(cmd.Context(), args[0])
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&ifMissing, "if-missing", false, "succeed when the bucket already exists")
	return cmd
}

func removeBucketCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rb <bucket>",
		Short: "Delete a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Client.DeleteBucket(cmd.Context(), args[0])
		},
	}
}

func listCmd(app *App) *cobra.Command {
	var links bool
	cmd := &cobra.Command{
		Use:   "ls <bucket>",
		Short: "List the keys, or links, of a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.Client.GetBucket(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var out []string
			if links {
				out, err = b.ListLinks(cmd.Context())
			} else {
				out, err = b.ListContents(cmd.Context())
			}
			if err != nil {
				return err
			}
			for _, s := range out {
				fmt.Fprintln(app.Out, s)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&links, "links", false, "print object links instead of keys")
	return cmd
}

func putCmd(app *App) *cobra.Command {
	var contentType string
	cmd := &cobra.Command{
		Use:   "put <bucket> <file>...",
		Short: "Upload files and print their JSON view",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.Client.GetBucket(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, path := range args[1:] {
				if err := app.put(cmd, b, path, contentType); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&contentType, "type", "", "content type, detected from the file extension when empty")
	return cmd
}

func (a *App) put(cmd *cobra.Command, b service.BucketService, path, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = detectContentType(path)
	}

	ob := object.FromFile(object.FromReader(f), filepath.Base(path), contentType, st.Size(), a.ObjectOptions)
	obj, err := b.CreateObject(cmd.Context(), ob)
	if err != nil {
		return err
	}
	view, err := obj.JSON(cmd.Context())
	if err != nil {
		return err
	}
	return a.printJSON(view)
}

func detectContentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func getCmd(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <bucket> <key>",
		Short: "Print an object's JSON view, or download it with --output",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := app.Client.Bucket(args[0])
			if output == "" {
				obj, err := b.GetObject(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				view, err := obj.JSON(cmd.Context())
				if err != nil {
					return err
				}
				return app.printJSON(view)
			}

			obj, err := b.OpenObject(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			defer obj.Close()

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, obj.Body()); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the object content to this file")
	return cmd
}

func linkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "link <bucket> <key>",
		Short: "Print the public or presigned link of an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := app.Client.Bucket(args[0]).Link(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Out, link)
			return nil
		},
	}
}

func removeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <bucket> <key>...",
		Short: "Delete objects",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Client.Bucket(args[0]).DeleteObjects(cmd.Context(), args[1:])
		},
	}
}

func moveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <bucket> <old-key> <new-key>",
		Short: "Rename an object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Client.Bucket(args[0]).RenameObject(cmd.Context(), args[1], args[2])
		},
	}
}
