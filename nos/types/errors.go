package types

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind discriminates the errors returned by the SDK.
type Kind int

const (
	KindUnknown Kind = iota

	// client side, raised before any network attempt
	KindInvalidBucketName
	KindInvalidObjectName
	KindFileOpenMode
	KindSerialization
	KindXmlParse

	// transport
	KindConnection
	KindConnectionTimeout

	// service
	KindService
	KindMultiObjectDelete
)

var kindNames = map[Kind]string{
	KindUnknown:           "Unknown",
	KindInvalidBucketName: "InvalidBucketName",
	KindInvalidObjectName: "InvalidObjectName",
	KindFileOpenMode:      "FileOpenModeError",
	KindSerialization:     "SerializationError",
	KindXmlParse:          "XmlParseError",
	KindConnection:        "ConnectionError",
	KindConnectionTimeout: "ConnectionTimeout",
	KindService:           "ServiceError",
	KindMultiObjectDelete: "MultiObjectDeleteError",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is implemented by every error type in this package.
type Error interface {
	error
	Kind() Kind
}

// KindOf returns the kind of the first SDK error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var e Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return KindUnknown
}

type ClientError struct {
	kind    Kind
	Message string
	Err     error
}

func (e *ClientError) Kind() Kind { return e.kind }

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s(%s) caused by: %v", e.kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s caused by: %s", e.kind, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func NewErrInvalidBucketName() *ClientError {
	return &ClientError{kind: KindInvalidBucketName, Message: "bucket name is empty."}
}

func NewErrInvalidObjectName() *ClientError {
	return &ClientError{kind: KindInvalidObjectName, Message: "object name is empty."}
}

func NewErrFileOpenMode() *ClientError {
	return &ClientError{
		kind:    KindFileOpenMode,
		Message: "object is a file that opened without the mode for binary files.",
	}
}

func NewErrSerialization(v any, err error) *ClientError {
	return &ClientError{
		kind:    KindSerialization,
		Message: fmt.Sprintf("unable to serialize %T", v),
		Err:     err,
	}
}

func NewErrXmlParse(status int, body []byte, err error) *ClientError {
	return &ClientError{
		kind:    KindXmlParse,
		Message: fmt.Sprintf("status: %d, body: %s", status, snippet(body)),
		Err:     err,
	}
}

// ConnectionError reports a failure talking to the server. Timeout
// distinguishes a timed out attempt from any other transport failure.
type ConnectionError struct {
	Timeout bool
	Err     error
}

func (e *ConnectionError) Kind() Kind {
	if e.Timeout {
		return KindConnectionTimeout
	}
	return KindConnection
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s caused by: %v", e.Kind(), e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ServiceError is returned for every non-2xx response.
type ServiceError struct {
	Code      string `xml:"Code"`
	Message   string `xml:"Message"`
	RequestID string `xml:"RequestId"`
	Resource  string `xml:"Resource"`

	StatusCode int    `xml:"-"`
	Status     string `xml:"-"`

	// raw response body, empty for client side errors
	Snapshot []byte `xml:"-"`
}

func (e *ServiceError) Kind() Kind { return KindService }

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ServiceError(%d, %s, %s, %s, %s)",
		e.StatusCode, e.Status, e.Code, e.RequestID, e.Message)
}

var serviceErrorNames = map[int]string{
	400: "BadRequest",
	403: "Forbidden",
	404: "NotFound",
	405: "MethodNotAllowed",
	409: "Conflict",
	411: "LengthRequired",
	416: "RequestedRangeNotSatisfiable",
	500: "InternalServerError",
	501: "NotImplemented",
	503: "ServiceUnavailable",
}

// Name returns a readable name for the status code, e.g. "NotFound".
func (e *ServiceError) Name() string {
	if n, ok := serviceErrorNames[e.StatusCode]; ok {
		return n
	}
	return "ServiceError"
}

// NewErrEntityTooLarge is raised locally when a body exceeds the maximum object size.
func NewErrEntityTooLarge() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusBadRequest,
		Status:     "Bad Request",
		Code:       "EntityTooLarge",
		Message:    "Request Entity Too Large",
	}
}

// ParseServiceError builds a ServiceError from an error response. The XML
// body is parsed best effort: on failure Code and Message stay empty.
func ParseServiceError(statusCode int, status, requestID string, body []byte) *ServiceError {
	se := &ServiceError{}
	if len(body) > 0 {
		if err := xml.Unmarshal(body, se); err != nil {
			se = &ServiceError{}
		}
	}
	se.StatusCode = statusCode
	se.Status = reasonPhrase(statusCode, status)
	se.Snapshot = body
	if requestID != "" || se.RequestID == "" {
		se.RequestID = requestID
	}
	se.Code = strings.TrimSpace(se.Code)
	se.Message = strings.TrimSpace(se.Message)
	return se
}

// reasonPhrase strips the numeric prefix of an http.Response.Status.
func reasonPhrase(statusCode int, status string) string {
	prefix := fmt.Sprintf("%d ", statusCode)
	if strings.HasPrefix(status, prefix) {
		return status[len(prefix):]
	}
	if status != "" {
		return status
	}
	return http.StatusText(statusCode)
}

type DeleteError struct {
	Key     string `xml:"Key"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

// MultiObjectDeleteError is returned by DeleteObjects when some keys could not be removed.
type MultiObjectDeleteError struct {
	Errors []DeleteError
}

func (e *MultiObjectDeleteError) Kind() Kind { return KindMultiObjectDelete }

func (e *MultiObjectDeleteError) Error() string {
	return fmt.Sprintf("MultiObjectDeleteError caused by: some objects delete unsuccessfully. %v", e.Errors)
}

func snippet(body []byte) string {
	n := len(body)
	if n > 256 {
		n = 256
	}
	return string(body[:n])
}
