package nos

import (
	"context"
	"encoding/xml"
	"io"

	"github.com/netease/nos-go-sdk/nos/types"
	"github.com/netease/nos-go-sdk/nos/util"
)

type PutObjectRequest struct {
	// The name of the bucket.
	Bucket *string

	// The name of the object.
	Key *string

	// A standard MIME type describing the format of the contents.
	ContentType *string `input:"header,Content-Type"`

	// User metadata, sent as x-nos-meta-* headers. Keys may carry the
	// prefix already.
	Metadata map[string]string `input:"header,x-nos-meta-,usermeta"`

	// The content of the object: a string, a byte slice, a stream or any
	// value the client's Serializer accepts.
	Body any

	RequestCommon
}

type PutObjectResult struct {
	// Entity tag for the uploaded object.
	ETag *string `output:"header,ETag,etag"`

	ResultCommon
}

// PutObject uploads an object.
func (c *Client) PutObject(ctx context.Context, request *PutObjectRequest, optFns ...func(*Options)) (*PutObjectResult, error) {
	var err error
	if request == nil {
		request = &PutObjectRequest{}
	}
	input := &OperationInput{
		OpName: "PutObject",
		Method: HTTPMethodPut,
		Bucket: orEmpty(request.Bucket),
		Key:    orEmpty(request.Key),
		Body:   request.Body,
	}
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	result := &PutObjectResult{}
	if err = unmarshalOutput(result, output, discardBodyHandler, unmarshalHeader); err != nil {
		return nil, err
	}
	return result, nil
}

type GetObjectRequest struct {
	// The name of the bucket.
	Bucket *string

	// The name of the object.
	Key *string

	// The content range of the object to be returned, e.g. "bytes=0-9".
	Range *string `input:"header,Range"`

	RequestCommon
}

type GetObjectResult struct {
	// Size of the body in bytes.
	ContentLength int64 `output:"header,Content-Length"`

	// The portion of the object returned in the response.
	ContentRange *string `output:"header,Content-Range"`

	ContentType *string `output:"header,Content-Type"`

	ETag *string `output:"header,ETag,etag"`

	LastModified *string `output:"header,Last-Modified"`

	Metadata map[string]string `output:"header,x-nos-meta-,usermeta"`

	// The object data. The caller must close it.
	Body io.ReadCloser

	ResultCommon
}

// GetObject downloads an object. The body is streamed.
func (c *Client) GetObject(ctx context.Context, request *GetObjectRequest, optFns ...func(*Options)) (*GetObjectResult, error) {
	var err error
	if request == nil {
		request = &GetObjectRequest{}
	}
	input := &OperationInput{
		OpName: "GetObject",
		Method: HTTPMethodGet,
		Bucket: orEmpty(request.Bucket),
		Key:    orEmpty(request.Key),
	}
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	result := &GetObjectResult{Body: output.Body}
	if err = unmarshalOutput(result, output, unmarshalHeader); err != nil {
		output.Body.Close()
		return nil, err
	}
	return result, nil
}

type HeadObjectRequest struct {
	// The name of the bucket.
	Bucket *string

	// The name of the object.
	Key *string

	RequestCommon
}

type HeadObjectResult struct {
	ContentLength int64 `output:"header,Content-Length"`

	ContentType *string `output:"header,Content-Type"`

	ETag *string `output:"header,ETag,etag"`

	LastModified *string `output:"header,Last-Modified"`

	Metadata map[string]string `output:"header,x-nos-meta-,usermeta"`

	ResultCommon
}

// HeadObject returns the metadata of an object without its data.
func (c *Client) HeadObject(ctx context.Context, request *HeadObjectRequest, optFns ...func(*Options)) (*HeadObjectResult, error) {
	var err error
	if request == nil {
		request = &HeadObjectRequest{}
	}
	input := &OperationInput{
		OpName: "HeadObject",
		Method: HTTPMethodHead,
		Bucket: orEmpty(request.Bucket),
		Key:    orEmpty(request.Key),
	}
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	result := &HeadObjectResult{}
	if err = unmarshalOutput(result, output, discardBodyHandler, unmarshalHeader); err != nil {
		return nil, err
	}
	return result, nil
}

type DeleteObjectRequest struct {
	// The name of the bucket.
	Bucket *string

	// The name of the object.
	Key *string

	RequestCommon
}

type DeleteObjectResult struct {
	ResultCommon
}

// DeleteObject deletes an object.
func (c *Client) DeleteObject(ctx context.Context, request *DeleteObjectRequest, optFns ...func(*Options)) (*DeleteObjectResult, error) {
	var err error
	if request == nil {
		request = &DeleteObjectRequest{}
	}
	input := &OperationInput{
		OpName: "DeleteObject",
		Method: HTTPMethodDelete,
		Bucket: orEmpty(request.Bucket),
		Key:    orEmpty(request.Key),
	}
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	result := &DeleteObjectResult{}
	if err = unmarshalOutput(result, output, discardBodyHandler); err != nil {
		return nil, err
	}
	return result, nil
}

type DeleteObjectsRequest struct {
	// The name of the bucket.
	Bucket *string

	// The keys to delete.
	Keys []string

	// In quiet mode the response only lists the keys that failed.
	Quiet bool

	RequestCommon
}

type DeletedInfo struct {
	Key string `xml:"Key"`
}

type DeleteObjectsResult struct {
	// Not filled in quiet mode.
	DeletedObjects []DeletedInfo `xml:"Deleted"`

	ResultCommon `xml:"-"`
}

type deleteObjectsResponse struct {
	DeleteObjectsResult
	Errors []types.DeleteError `xml:"Error"`
}

type deleteObject struct {
	Key string `xml:"Key"`
}

type deleteObjectsBody struct {
	XMLName xml.Name       `xml:"Delete"`
	Quiet   bool           `xml:"Quiet"`
	Objects []deleteObject `xml:"Object"`
}

func marshalDeleteObjects(keys []string, quiet bool) ([]byte, error) {
	body := deleteObjectsBody{Quiet: quiet}
	for _, k := range keys {
		body.Objects = append(body.Objects, deleteObject{Key: k})
	}
	// the service expects at least one Object element
	if len(body.Objects) == 0 {
		body.Objects = []deleteObject{{}}
	}
	return xml.Marshal(&body)
}

// DeleteObjects deletes several objects of a bucket with one request. When
// some keys could not be deleted it returns a *MultiObjectDeleteError.
func (c *Client) DeleteObjects(ctx context.Context, request *DeleteObjectsRequest, optFns ...func(*Options)) (*DeleteObjectsResult, error) {
	var err error
	if request == nil {
		request = &DeleteObjectsRequest{}
	}
	body, err := marshalDeleteObjects(request.Keys, request.Quiet)
	if err != nil {
		return nil, types.NewErrSerialization(request.Keys, err)
	}
	input := &OperationInput{
		OpName: "DeleteObjects",
		Method: HTTPMethodPost,
		Bucket: orEmpty(request.Bucket),
		Body:   body,
	}
	input.Parameters.SetFlag("delete")
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	response := &deleteObjectsResponse{}
	if err = unmarshalOutput(response, output, unmarshalBodyXml); err != nil {
		return nil, err
	}
	if len(response.Errors) > 0 {
		return nil, &types.MultiObjectDeleteError{Errors: response.Errors}
	}
	return &response.DeleteObjectsResult, nil
}

type CopyObjectRequest struct {
	// The source bucket and object.
	SourceBucket *string
	SourceKey    *string

	// The destination bucket and object.
	Bucket *string
	Key    *string

	RequestCommon
}

type CopyObjectResult struct {
	ResultCommon
}

// CopyObject copies an object inside NOS.
func (c *Client) CopyObject(ctx context.Context, request *CopyObjectRequest, optFns ...func(*Options)) (*CopyObjectResult, error) {
	if request == nil {
		request = &CopyObjectRequest{}
	}
	output, err := c.placeObject(ctx, "CopyObject", HeaderNosCopySource,
		request.SourceBucket, request.SourceKey, request.Bucket, request.Key, request, optFns)
	if err != nil {
		return nil, err
	}
	result := &CopyObjectResult{}
	if err = unmarshalOutput(result, output, discardBodyHandler); err != nil {
		return nil, err
	}
	return result, nil
}

type MoveObjectRequest struct {
	// The source bucket and object.
	SourceBucket *string
	SourceKey    *string

	// The destination bucket and object.
	Bucket *string
	Key    *string

	RequestCommon
}

type MoveObjectResult struct {
	ResultCommon
}

// MoveObject moves an object inside NOS.
func (c *Client) MoveObject(ctx context.Context, request *MoveObjectRequest, optFns ...func(*Options)) (*MoveObjectResult, error) {
	if request == nil {
		request = &MoveObjectRequest{}
	}
	output, err := c.placeObject(ctx, "MoveObject", HeaderNosMoveSource,
		request.SourceBucket, request.SourceKey, request.Bucket, request.Key, request, optFns)
	if err != nil {
		return nil, err
	}
	result := &MoveObjectResult{}
	if err = unmarshalOutput(result, output, discardBodyHandler); err != nil {
		return nil, err
	}
	return result, nil
}

// placeObject sends the PUT shared by copy and move, the source going in
// header as /bucket/escaped-key.
func (c *Client) placeObject(ctx context.Context, opName, header string, srcBucket, srcKey, bucket, key *string, request any, optFns []func(*Options)) (*OperationOutput, error) {
	if !isValidBucketName(srcBucket) {
		return nil, types.NewErrInvalidBucketName()
	}
	if !isValidObjectName(srcKey) {
		return nil, types.NewErrInvalidObjectName()
	}

	input := &OperationInput{
		OpName: opName,
		Method: HTTPMethodPut,
		Bucket: orEmpty(bucket),
		Key:    orEmpty(key),
		Headers: map[string]string{
			header: "/" + *srcBucket + "/" + util.EscapeKey(*srcKey),
		},
	}
	if err := marshalInput(request, input); err != nil {
		return nil, err
	}
	return c.InvokeOperation(ctx, input, optFns...)
}

type ListObjectsRequest struct {
	// The name of the bucket.
	Bucket *string

	// Only keys starting with Prefix are returned.
	Prefix *string `input:"query,prefix"`

	// Keys sharing the part between Prefix and the first Delimiter are
	// rolled up into CommonPrefixes.
	Delimiter *string `input:"query,delimiter"`

	// Listing starts after this key.
	Marker *string `input:"query,marker"`

	// The maximum number of keys to return.
	MaxKeys int32 `input:"query,max-keys"`

	RequestCommon
}

type ObjectProperties struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"Etag"`
	Size         int64  `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
}

type CommonPrefix struct {
	Prefix string `xml:"Prefix"`
}

type ListObjectsResult struct {
	Name           string             `xml:"Name"`
	Prefix         string             `xml:"Prefix"`
	Marker         string             `xml:"Marker"`
	NextMarker     string             `xml:"NextMarker"`
	MaxKeys        int32              `xml:"MaxKeys"`
	Delimiter      string             `xml:"Delimiter"`
	IsTruncated    bool               `xml:"IsTruncated"`
	Contents       []ObjectProperties `xml:"Contents"`
	CommonPrefixes []CommonPrefix     `xml:"CommonPrefixes"`

	ResultCommon `xml:"-"`
}

// ListObjects lists the objects of a bucket.
func (c *Client) ListObjects(ctx context.Context, request *ListObjectsRequest, optFns ...func(*Options)) (*ListObjectsResult, error) {
	var err error
	if request == nil {
		request = &ListObjectsRequest{}
	}
	input := &OperationInput{
		OpName: "ListObjects",
		Method: HTTPMethodGet,
		Bucket: orEmpty(request.Bucket),
	}
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	result := &ListObjectsResult{}
	if err = unmarshalOutput(result, output, unmarshalBodyXml); err != nil {
		return nil, err
	}
	return result, nil
}

// orEmpty turns a missing bucket or key of an operation that requires one
// into an empty name so it fails validation.
func orEmpty(v *string) *string {
	if v == nil {
		return Ptr("")
	}
	return v
}
