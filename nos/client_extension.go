package nos

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// IsObjectExist checks if the object exists.
func (c *Client) IsObjectExist(ctx context.Context, bucket string, key string, optFns ...func(*Options)) (bool, error) {
	_, err := c.HeadObject(ctx, &HeadObjectRequest{Bucket: Ptr(bucket), Key: Ptr(key)}, optFns...)
	if err == nil {
		return true, nil
	}
	var serr *ServiceError
	if errors.As(err, &serr) && serr.StatusCode == 404 {
		return false, nil
	}
	return false, err
}

// PutObjectFromFile creates a new object from the local file.
func (c *Client) PutObjectFromFile(ctx context.Context, request *PutObjectRequest, filePath string, optFns ...func(*Options)) (*PutObjectResult, error) {
	if request == nil {
		request = &PutObjectRequest{}
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	pRequest := *request
	pRequest.Body = file
	return c.PutObject(ctx, &pRequest, optFns...)
}

type UploadFileOptions struct {
	// Size of every part but the last one.
	PartSize int64

	// User metadata of the final object.
	Metadata map[string]string

	ContentType *string
}

// UploadFile uploads a local file with a multipart upload, one part after
// the other. The upload is aborted when a part fails.
func (c *Client) UploadFile(ctx context.Context, bucket, key, filePath string, optFns ...func(*UploadFileOptions)) (*CompleteMultipartUploadResult, error) {
	opts := UploadFileOptions{PartSize: DefaultUploadPartSize}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.PartSize <= 0 || opts.PartSize > MaxObjectSize {
		return nil, fmt.Errorf("invalid part size %d", opts.PartSize)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if (size+opts.PartSize-1)/opts.PartSize > int64(MaxUploadParts) {
		return nil, fmt.Errorf("file %s needs more than %d parts of %d bytes", filePath, MaxUploadParts, opts.PartSize)
	}

	h := md5.New()
	if err = hashStream(h, file); err != nil {
		return nil, err
	}

	created, err := c.CreateMultipartUpload(ctx, &CreateMultipartUploadRequest{
		Bucket:      Ptr(bucket),
		Key:         Ptr(key),
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
	})
	if err != nil {
		return nil, err
	}

	var parts []UploadPart
	for n, offset := int32(1), int64(0); offset < size || n == 1; n, offset = n+1, offset+opts.PartSize {
		partLen := opts.PartSize
		if offset+partLen > size {
			partLen = size - offset
		}
		part, err := c.UploadPart(ctx, &UploadPartRequest{
			Bucket:     Ptr(bucket),
			Key:        Ptr(key),
			PartNumber: n,
			UploadId:   Ptr(created.UploadId),
			Body:       io.NewSectionReader(file, offset, partLen),
		})
		if err != nil {
			c.abortQuietly(ctx, bucket, key, created.UploadId)
			return nil, err
		}
		parts = append(parts, UploadPart{PartNumber: n, ETag: ToString(part.ETag)})
	}

	result, err := c.CompleteMultipartUpload(ctx, &CompleteMultipartUploadRequest{
		Bucket:    Ptr(bucket),
		Key:       Ptr(key),
		UploadId:  Ptr(created.UploadId),
		Parts:     parts,
		ObjectMD5: Ptr(hex.EncodeToString(h.Sum(nil))),
		Metadata:  opts.Metadata,
	})
	if err != nil {
		c.abortQuietly(ctx, bucket, key, created.UploadId)
		return nil, err
	}
	return result, nil
}

func (c *Client) abortQuietly(ctx context.Context, bucket, key, uploadId string) {
	_, err := c.AbortMultipartUpload(ctx, &AbortMultipartUploadRequest{
		Bucket:   Ptr(bucket),
		Key:      Ptr(key),
		UploadId: Ptr(uploadId),
	})
	if err != nil {
		c.options.Logger.WithField("uploadId", uploadId).WithError(err).Warn("abort multipart upload failed")
	}
}
