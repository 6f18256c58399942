package nos

import (
	"context"
	"fmt"
	"strconv"
)

type PaginatorOptions struct {
	// The maximum number of items in the response.
	Limit int32
}

// ListObjectsPaginator is a paginator for ListObjects
type ListObjectsPaginator struct {
	options     PaginatorOptions
	client      *Client
	request     *ListObjectsRequest
	marker      *string
	firstPage   bool
	isTruncated bool
}

func (c *Client) NewListObjectsPaginator(request *ListObjectsRequest, optFns ...func(*PaginatorOptions)) *ListObjectsPaginator {
	if request == nil {
		request = &ListObjectsRequest{}
	}

	options := PaginatorOptions{}
	options.Limit = request.MaxKeys

	for _, fn := range optFns {
		fn(&options)
	}

	return &ListObjectsPaginator{
		options:   options,
		client:    c,
		request:   request,
		marker:    request.Marker,
		firstPage: true,
	}
}

// HasNext returns true if there's a next page.
func (p *ListObjectsPaginator) HasNext() bool {
	return p.firstPage || p.isTruncated
}

// NextPage retrieves the next ListObjects page.
func (p *ListObjectsPaginator) NextPage(ctx context.Context, optFns ...func(*Options)) (*ListObjectsResult, error) {
	if !p.HasNext() {
		return nil, fmt.Errorf("no more pages available")
	}

	request := *p.request
	request.Marker = p.marker
	request.MaxKeys = p.options.Limit

	result, err := p.client.ListObjects(ctx, &request, optFns...)
	if err != nil {
		return nil, err
	}

	p.firstPage = false
	p.isTruncated = result.IsTruncated
	p.marker = nextObjectsMarker(result)

	return result, nil
}

// NextMarker is only sent with a delimiter; otherwise the last key is the marker.
func nextObjectsMarker(result *ListObjectsResult) *string {
	if result.NextMarker != "" {
		return Ptr(result.NextMarker)
	}
	if n := len(result.Contents); n > 0 {
		return Ptr(result.Contents[n-1].Key)
	}
	return nil
}

// ListPartsPaginator is a paginator for ListParts
type ListPartsPaginator struct {
	options     PaginatorOptions
	client      *Client
	request     *ListPartsRequest
	marker      *string
	firstPage   bool
	isTruncated bool
}

func (c *Client) NewListPartsPaginator(request *ListPartsRequest, optFns ...func(*PaginatorOptions)) *ListPartsPaginator {
	if request == nil {
		request = &ListPartsRequest{}
	}

	options := PaginatorOptions{}
	options.Limit = request.MaxParts

	for _, fn := range optFns {
		fn(&options)
	}

	return &ListPartsPaginator{
		options:   options,
		client:    c,
		request:   request,
		marker:    request.PartNumberMarker,
		firstPage: true,
	}
}

// HasNext returns true if there's a next page.
func (p *ListPartsPaginator) HasNext() bool {
	return p.firstPage || p.isTruncated
}

// NextPage retrieves the next ListParts page.
func (p *ListPartsPaginator) NextPage(ctx context.Context, optFns ...func(*Options)) (*ListPartsResult, error) {
	if !p.HasNext() {
		return nil, fmt.Errorf("no more pages available")
	}

	request := *p.request
	request.PartNumberMarker = p.marker
	request.MaxParts = p.options.Limit

	result, err := p.client.ListParts(ctx, &request, optFns...)
	if err != nil {
		return nil, err
	}

	p.firstPage = false
	p.isTruncated = result.IsTruncated
	p.marker = Ptr(strconv.FormatInt(int64(result.NextPartNumberMarker), 10))

	return result, nil
}

// ListMultipartUploadsPaginator is a paginator for ListMultipartUploads
type ListMultipartUploadsPaginator struct {
	options     PaginatorOptions
	client      *Client
	request     *ListMultipartUploadsRequest
	keyMarker   *string
	firstPage   bool
	isTruncated bool
}

func (c *Client) NewListMultipartUploadsPaginator(request *ListMultipartUploadsRequest, optFns ...func(*PaginatorOptions)) *ListMultipartUploadsPaginator {
	if request == nil {
		request = &ListMultipartUploadsRequest{}
	}

	options := PaginatorOptions{}
	options.Limit = request.MaxUploads

	for _, fn := range optFns {
		fn(&options)
	}

	return &ListMultipartUploadsPaginator{
		options:   options,
		client:    c,
		request:   request,
		keyMarker: request.KeyMarker,
		firstPage: true,
	}
}

// HasNext returns true if there's a next page.
func (p *ListMultipartUploadsPaginator) HasNext() bool {
	return p.firstPage || p.isTruncated
}

// NextPage retrieves the next ListMultipartUploads page.
func (p *ListMultipartUploadsPaginator) NextPage(ctx context.Context, optFns ...func(*Options)) (*ListMultipartUploadsResult, error) {
	if !p.HasNext() {
		return nil, fmt.Errorf("no more pages available")
	}

	request := *p.request
	request.KeyMarker = p.keyMarker
	request.MaxUploads = p.options.Limit

	result, err := p.client.ListMultipartUploads(ctx, &request, optFns...)
	if err != nil {
		return nil, err
	}

	p.firstPage = false
	p.isTruncated = result.IsTruncated
	p.keyMarker = Ptr(result.NextKeyMarker)

	return result, nil
}
