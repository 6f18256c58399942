package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/netease/nos-go-sdk/nos"
	"github.com/netease/nos-go-sdk/nos/readers"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) putCmd() *cobra.Command {
	var contentType, meta string
	cmd := &cobra.Command{
		Use:   "put BUCKET KEY FILE",
		Short: "Upload a local file as an object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := &nos.PutObjectRequest{
				Bucket:   nos.Ptr(args[0]),
				Key:      nos.Ptr(args[1]),
				Metadata: parseKeyValue(meta),
			}
			if contentType != "" {
				request.ContentType = nos.Ptr(contentType)
			}
			result, err := a.client.PutObjectFromFile(context.Background(), request, args[2])
			if err != nil {
				return errors.Wrap(err, "Put failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", args[1], nos.ToString(result.ETag))
			return nil
		},
	}
	cmd.Flags().StringVarP(&contentType, "content-type", "t", "", "MIME type of the object")
	cmd.Flags().StringVarP(&meta, "meta", "m", "", "user metadata: key1=value1,key2=value2")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	var byteRange string
	cmd := &cobra.Command{
		Use:   "get BUCKET KEY [FILE]",
		Short: "Download an object to a local file or stdout",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := &nos.GetObjectRequest{
				Bucket: nos.Ptr(args[0]),
				Key:    nos.Ptr(args[1]),
			}
			if byteRange != "" {
				request.Range = nos.Ptr(byteRange)
			}
			result, err := a.client.GetObject(context.Background(), request)
			if err != nil {
				return errors.Wrap(err, "Get failed")
			}
			defer result.Body.Close()

			cr := readers.NewCountingReader(result.Body)
			if len(args) == 3 {
				f, ferr := os.OpenFile(args[2], os.O_CREATE|os.O_TRUNC|os.O_WRONLY, nos.FilePermMode)
				if ferr != nil {
					return errors.Wrap(ferr, "Failed to create "+args[2])
				}
				err = copyAndClose(f, cr)
			} else {
				_, err = io.Copy(cmd.OutOrStdout(), cr)
			}
			if err != nil {
				return errors.Wrap(err, "Download interrupted")
			}
			a.logger.WithField("bytes", cr.BytesRead()).Debug("downloaded " + args[1])
			return nil
		},
	}
	cmd.Flags().StringVarP(&byteRange, "range", "r", "", "byte range, e.g. bytes=0-99")
	return cmd
}

func (a *app) headCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "head BUCKET KEY",
		Short: "Show the metadata of an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.HeadObject(context.Background(), &nos.HeadObjectRequest{
				Bucket: nos.Ptr(args[0]),
				Key:    nos.Ptr(args[1]),
			})
			if err != nil {
				return errors.Wrap(err, "Head failed")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Content-Length: %d\n", result.ContentLength)
			fmt.Fprintf(out, "Content-Type: %s\n", nos.ToString(result.ContentType))
			fmt.Fprintf(out, "ETag: %s\n", nos.ToString(result.ETag))
			fmt.Fprintf(out, "Last-Modified: %s\n", nos.ToString(result.LastModified))
			for k, v := range result.Metadata {
				fmt.Fprintf(out, "%s%s: %s\n", nos.HeaderNosMetaPrefix, k, v)
			}
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "rm BUCKET KEY...",
		Short: "Delete one or more objects",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				_, err := a.client.DeleteObject(context.Background(), &nos.DeleteObjectRequest{
					Bucket: nos.Ptr(args[0]),
					Key:    nos.Ptr(args[1]),
				})
				return errors.Wrap(err, "Delete failed")
			}

			result, err := a.client.DeleteObjects(context.Background(), &nos.DeleteObjectsRequest{
				Bucket: nos.Ptr(args[0]),
				Keys:   args[1:],
				Quiet:  quiet,
			})
			if merr, ok := errors.Cause(err).(*nos.MultiObjectDeleteError); ok {
				for _, e := range merr.Errors {
					a.logger.WithField("code", e.Code).Warn(e.Key + ": " + e.Message)
				}
			}
			if err != nil {
				return errors.Wrap(err, "Delete failed")
			}
			for _, d := range result.DeletedObjects {
				fmt.Fprintln(cmd.OutOrStdout(), d.Key)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report the keys that failed")
	return cmd
}

func (a *app) lsCmd() *cobra.Command {
	var prefix, delimiter, marker string
	var maxKeys int32
	var all bool
	cmd := &cobra.Command{
		Use:   "ls BUCKET",
		Short: "List the objects of a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := &nos.ListObjectsRequest{
				Bucket:  nos.Ptr(args[0]),
				MaxKeys: maxKeys,
			}
			if prefix != "" {
				request.Prefix = nos.Ptr(prefix)
			}
			if delimiter != "" {
				request.Delimiter = nos.Ptr(delimiter)
			}
			if marker != "" {
				request.Marker = nos.Ptr(marker)
			}
			out := cmd.OutOrStdout()
			p := a.client.NewListObjectsPaginator(request)
			for p.HasNext() {
				result, err := p.NextPage(context.Background())
				if err != nil {
					return errors.Wrap(err, "List failed")
				}
				for _, cp := range result.CommonPrefixes {
					fmt.Fprintf(out, "%12s  %s\n", "DIR", cp.Prefix)
				}
				for _, o := range result.Contents {
					fmt.Fprintf(out, "%12d  %s  %s\n", o.Size, o.LastModified, o.Key)
				}
				if !all {
					if result.IsTruncated {
						a.logger.Info("more keys after " + result.NextMarker)
					}
					break
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "only keys starting with prefix")
	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", "", "roll up keys sharing a prefix up to the delimiter")
	cmd.Flags().StringVar(&marker, "marker", "", "start listing after this key")
	cmd.Flags().Int32Var(&maxKeys, "max-keys", 0, "maximum number of keys per request")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "follow truncated listings to the end")
	return cmd
}

func (a *app) cpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cp SRC_BUCKET SRC_KEY DST_BUCKET DST_KEY",
		Short: "Copy an object",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.client.CopyObject(context.Background(), &nos.CopyObjectRequest{
				SourceBucket: nos.Ptr(args[0]),
				SourceKey:    nos.Ptr(args[1]),
				Bucket:       nos.Ptr(args[2]),
				Key:          nos.Ptr(args[3]),
			})
			return errors.Wrap(err, "Copy failed")
		},
	}
}

func (a *app) mvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv SRC_BUCKET SRC_KEY DST_BUCKET DST_KEY",
		Short: "Move an object",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.client.MoveObject(context.Background(), &nos.MoveObjectRequest{
				SourceBucket: nos.Ptr(args[0]),
				SourceKey:    nos.Ptr(args[1]),
				Bucket:       nos.Ptr(args[2]),
				Key:          nos.Ptr(args[3]),
			})
			return errors.Wrap(err, "Move failed")
		},
	}
}

// copyAndClose reports the close error of dst when the copy itself succeeded.
func copyAndClose(dst io.WriteCloser, src io.Reader) error {
	_, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return err
}
