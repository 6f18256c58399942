package nos

import (
	"io"
	"net/http"

	"github.com/netease/nos-go-sdk/nos/types"
)

type (
	Param  = types.Param
	Params = types.Params

	ClientError            = types.ClientError
	ConnectionError        = types.ConnectionError
	ServiceError           = types.ServiceError
	DeleteError            = types.DeleteError
	MultiObjectDeleteError = types.MultiObjectDeleteError
)

type RequestCommon struct {
	// Extra headers, sent with the caller's casing.
	Headers map[string]string

	// Extra query parameters, appended after the operation's own ones.
	Parameters Params
}

type ResultCommon struct {
	Status     string
	StatusCode int
	Headers    http.Header
	RequestID  string
}

func (r *ResultCommon) CopyIn(output *OperationOutput) {
	r.Status = output.Status
	r.StatusCode = output.StatusCode
	r.Headers = output.Headers
	r.RequestID = output.Headers.Get(HeaderNosRequestID)
}

type OperationInput struct {
	OpName string
	Method string

	// nil leaves the bucket or the key out of the request.
	Bucket *string
	Key    *string

	Headers    map[string]string
	Parameters Params

	// Passed through the client's Serializer.
	Body any
}

type OperationOutput struct {
	Input *OperationInput

	Status     string
	StatusCode int
	Headers    http.Header
	Body       io.ReadCloser
}
