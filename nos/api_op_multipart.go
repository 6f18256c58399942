package nos

import (
	"context"
	"encoding/xml"
	"strconv"

	"github.com/netease/nos-go-sdk/nos/types"
)

type CreateMultipartUploadRequest struct {
	// The name of the bucket.
	Bucket *string

	// The name of the object.
	Key *string

	ContentType *string `input:"header,Content-Type"`

	// User metadata of the final object.
	Metadata map[string]string `input:"header,x-nos-meta-,usermeta"`

	RequestCommon
}

type CreateMultipartUploadResult struct {
	Bucket   string `xml:"Bucket"`
	Key      string `xml:"Key"`
	UploadId string `xml:"UploadId"`

	ResultCommon `xml:"-"`
}

// CreateMultipartUpload starts a multipart upload and returns its upload ID.
func (c *Client) CreateMultipartUpload(ctx context.Context, request *CreateMultipartUploadRequest, optFns ...func(*Options)) (*CreateMultipartUploadResult, error) {
	var err error
	if request == nil {
		request = &CreateMultipartUploadRequest{}
	}
	input := &OperationInput{
		OpName: "CreateMultipartUpload",
		Method: HTTPMethodPost,
		Bucket: orEmpty(request.Bucket),
		Key:    orEmpty(request.Key),
		Body:   "",
	}
	input.Parameters.SetFlag("uploads")
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	result := &CreateMultipartUploadResult{}
	if err = unmarshalOutput(result, output, unmarshalBodyXml); err != nil {
		return nil, err
	}
	return result, nil
}

type UploadPartRequest struct {
	// The name of the bucket.
	Bucket *string

	// The name of the object.
	Key *string

	// Position of the part, from 1 to 10000.
	PartNumber int32

	// The ID returned by CreateMultipartUpload.
	UploadId *string

	// The content of the part.
	Body any

	RequestCommon
}

type UploadPartResult struct {
	ETag *string `output:"header,ETag,etag"`

	ResultCommon
}

// UploadPart uploads one part of a multipart upload.
func (c *Client) UploadPart(ctx context.Context, request *UploadPartRequest, optFns ...func(*Options)) (*UploadPartResult, error) {
	var err error
	if request == nil {
		request = &UploadPartRequest{}
	}
	input := &OperationInput{
		OpName: "UploadPart",
		Method: HTTPMethodPut,
		Bucket: orEmpty(request.Bucket),
		Key:    orEmpty(request.Key),
		Body:   request.Body,
	}
	input.Parameters.SetValue("partNumber", strconv.FormatInt(int64(request.PartNumber), 10))
	input.Parameters.SetValue("uploadId", ToString(request.UploadId))
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	result := &UploadPartResult{}
	if err = unmarshalOutput(result, output, discardBodyHandler, unmarshalHeader); err != nil {
		return nil, err
	}
	return result, nil
}

type UploadPart struct {
	PartNumber int32  `xml:"PartNumber"`
	ETag       string `xml:"ETag"`
}

type completeMultipartUploadBody struct {
	XMLName xml.Name     `xml:"CompleteMultipartUpload"`
	Parts   []UploadPart `xml:"Part"`
}

type CompleteMultipartUploadRequest struct {
	// The name of the bucket.
	Bucket *string

	// The name of the object.
	Key *string

	// The ID returned by CreateMultipartUpload.
	UploadId *string

	// The uploaded parts in ascending part number order.
	Parts []UploadPart

	// MD5 of the whole object.
	ObjectMD5 *string `input:"header,x-nos-Object-md5"`

	// User metadata of the final object.
	Metadata map[string]string `input:"header,x-nos-meta-,usermeta"`

	RequestCommon
}

type CompleteMultipartUploadResult struct {
	Location string `xml:"Location"`
	Bucket   string `xml:"Bucket"`
	Key      string `xml:"Key"`
	ETag     string `xml:"ETag"`

	ResultCommon `xml:"-"`
}

// CompleteMultipartUpload assembles the uploaded parts into the object.
func (c *Client) CompleteMultipartUpload(ctx context.Context, request *CompleteMultipartUploadRequest, optFns ...func(*Options)) (*CompleteMultipartUploadResult, error) {
	var err error
	if request == nil {
		request = &CompleteMultipartUploadRequest{}
	}
	body, err := xml.Marshal(&completeMultipartUploadBody{Parts: request.Parts})
	if err != nil {
		return nil, types.NewErrSerialization(request.Parts, err)
	}
	input := &OperationInput{
		OpName: "CompleteMultipartUpload",
		Method: HTTPMethodPost,
		Bucket: orEmpty(request.Bucket),
		Key:    orEmpty(request.Key),
		Body:   body,
	}
	input.Parameters.SetValue("uploadId", ToString(request.UploadId))
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	result := &CompleteMultipartUploadResult{}
	if err = unmarshalOutput(result, output, unmarshalBodyXml); err != nil {
		return nil, err
	}
	return result, nil
}

type AbortMultipartUploadRequest struct {
	// The name of the bucket.
	Bucket *string

	// The name of the object.
	Key *string

	// The ID returned by CreateMultipartUpload.
	UploadId *string

	RequestCommon
}

type AbortMultipartUploadResult struct {
	ResultCommon
}

// AbortMultipartUpload cancels a multipart upload and frees its parts.
func (c *Client) AbortMultipartUpload(ctx context.Context, request *AbortMultipartUploadRequest, optFns ...func(*Options)) (*AbortMultipartUploadResult, error) {
	var err error
	if request == nil {
		request = &AbortMultipartUploadRequest{}
	}
	input := &OperationInput{
		OpName: "AbortMultipartUpload",
		Method: HTTPMethodDelete,
		Bucket: orEmpty(request.Bucket),
		Key:    orEmpty(request.Key),
	}
	input.Parameters.SetValue("uploadId", ToString(request.UploadId))
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	result := &AbortMultipartUploadResult{}
	if err = unmarshalOutput(result, output, discardBodyHandler); err != nil {
		return nil, err
	}
	return result, nil
}

type ListPartsRequest struct {
	// The name of the bucket.
	Bucket *string

	// The name of the object.
	Key *string

	// The ID returned by CreateMultipartUpload.
	UploadId *string

	// The maximum number of parts to return.
	MaxParts int32 `input:"query,max-parts"`

	// Listing starts after this part number.
	PartNumberMarker *string `input:"query,part-number-marker"`

	RequestCommon
}

type PartInfo struct {
	PartNumber   int32  `xml:"PartNumber"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int64  `xml:"Size"`
}

type ListPartsResult struct {
	Bucket               string     `xml:"Bucket"`
	Key                  string     `xml:"Key"`
	UploadId             string     `xml:"UploadId"`
	StorageClass         string     `xml:"StorageClass"`
	PartNumberMarker     int32      `xml:"PartNumberMarker"`
	NextPartNumberMarker int32      `xml:"NextPartNumberMarker"`
	MaxParts             int32      `xml:"MaxParts"`
	IsTruncated          bool       `xml:"IsTruncated"`
	Parts                []PartInfo `xml:"Part"`

	ResultCommon `xml:"-"`
}

// ListParts lists the parts uploaded so far for a multipart upload.
func (c *Client) ListParts(ctx context.Context, request *ListPartsRequest, optFns ...func(*Options)) (*ListPartsResult, error) {
	var err error
	if request == nil {
		request = &ListPartsRequest{}
	}
	input := &OperationInput{
		OpName: "ListParts",
		Method: HTTPMethodGet,
		Bucket: orEmpty(request.Bucket),
		Key:    orEmpty(request.Key),
	}
	input.Parameters.SetValue("uploadId", ToString(request.UploadId))
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	result := &ListPartsResult{}
	if err = unmarshalOutput(result, output, unmarshalBodyXml); err != nil {
		return nil, err
	}
	return result, nil
}

type ListMultipartUploadsRequest struct {
	// The name of the bucket.
	Bucket *string

	// The maximum number of uploads to return.
	MaxUploads int32 `input:"query,max-uploads"`

	// Listing starts after this key.
	KeyMarker *string `input:"query,key-marker"`

	RequestCommon
}

type Upload struct {
	Key          string `xml:"Key"`
	UploadId     string `xml:"UploadId"`
	StorageClass string `xml:"StorageClass"`
	Initiated    string `xml:"Initiated"`
}

type ListMultipartUploadsResult struct {
	Bucket        string   `xml:"Bucket"`
	NextKeyMarker string   `xml:"NextKeyMarker"`
	IsTruncated   bool     `xml:"IsTruncated"`
	Uploads       []Upload `xml:"Upload"`

	ResultCommon `xml:"-"`
}

// ListMultipartUploads lists the multipart uploads in progress in a bucket.
func (c *Client) ListMultipartUploads(ctx context.Context, request *ListMultipartUploadsRequest, optFns ...func(*Options)) (*ListMultipartUploadsResult, error) {
	var err error
	if request == nil {
		request = &ListMultipartUploadsRequest{}
	}
	input := &OperationInput{
		OpName: "ListMultipartUploads",
		Method: HTTPMethodGet,
		Bucket: orEmpty(request.Bucket),
	}
	input.Parameters.SetFlag("uploads")
	if err = marshalInput(request, input); err != nil {
		return nil, err
	}

	output, err := c.InvokeOperation(ctx, input, optFns...)
	if err != nil {
		return nil, err
	}

	result := &ListMultipartUploadsResult{}
	if err = unmarshalOutput(result, output, unmarshalBodyXml); err != nil {
		return nil, err
	}
	return result, nil
}
