package main

import (
	"context"
	"fmt"

	"github.com/netease/nos-go-sdk/nos"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) mpuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mpu",
		Short: "Multipart uploads",
		Long:  `Commands for uploading large files in parts and managing unfinished uploads.`,
	}
	cmd.AddCommand(
		a.mpuUploadCmd(),
		a.mpuListCmd(),
		a.mpuPartsCmd(),
		a.mpuAbortCmd(),
	)
	return cmd
}

func (a *app) mpuUploadCmd() *cobra.Command {
	var partSize int64
	var contentType, meta string
	cmd := &cobra.Command{
		Use:   "upload BUCKET KEY FILE",
		Short: "Upload a local file in parts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.UploadFile(context.Background(), args[0], args[1], args[2],
				func(o *nos.UploadFileOptions) {
					o.PartSize = partSize
					o.Metadata = parseKeyValue(meta)
					if contentType != "" {
						o.ContentType = nos.Ptr(contentType)
					}
				})
			if err != nil {
				return errors.Wrap(err, "Multipart upload failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", result.Key, result.ETag)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&partSize, "part-size", "s", nos.DefaultUploadPartSize, "size of every part but the last, in bytes")
	cmd.Flags().StringVarP(&contentType, "content-type", "t", "", "MIME type of the object")
	cmd.Flags().StringVarP(&meta, "meta", "m", "", "user metadata: key1=value1,key2=value2")
	return cmd
}

func (a *app) mpuListCmd() *cobra.Command {
	var keyMarker string
	var maxUploads int32
	cmd := &cobra.Command{
		Use:   "ls BUCKET",
		Short: "List unfinished multipart uploads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := &nos.ListMultipartUploadsRequest{
				Bucket:     nos.Ptr(args[0]),
				MaxUploads: maxUploads,
			}
			if keyMarker != "" {
				request.KeyMarker = nos.Ptr(keyMarker)
			}
			result, err := a.client.ListMultipartUploads(context.Background(), request)
			if err != nil {
				return errors.Wrap(err, "List uploads failed")
			}
			for _, u := range result.Uploads {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", u.UploadId, u.Initiated, u.Key)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&keyMarker, "key-marker", "", "start listing after this key")
	cmd.Flags().Int32Var(&maxUploads, "max-uploads", 0, "maximum number of uploads to return")
	return cmd
}

func (a *app) mpuPartsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parts BUCKET KEY UPLOAD_ID",
		Short: "List the parts uploaded so far",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.ListParts(context.Background(), &nos.ListPartsRequest{
				Bucket:   nos.Ptr(args[0]),
				Key:      nos.Ptr(args[1]),
				UploadId: nos.Ptr(args[2]),
			})
			if err != nil {
				return errors.Wrap(err, "List parts failed")
			}
			for _, p := range result.Parts {
				fmt.Fprintf(cmd.OutOrStdout(), "%5d\t%12d\t%s\n", p.PartNumber, p.Size, p.ETag)
			}
			return nil
		},
	}
}

func (a *app) mpuAbortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abort BUCKET KEY UPLOAD_ID",
		Short: "Abort a multipart upload",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.client.AbortMultipartUpload(context.Background(), &nos.AbortMultipartUploadRequest{
				Bucket:   nos.Ptr(args[0]),
				Key:      nos.Ptr(args[1]),
				UploadId: nos.Ptr(args[2]),
			})
			return errors.Wrap(err, "Abort failed")
		},
	}
}
