package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/netease/nos-go-sdk/nos/types"
)

const requestIDHeader = "x-nos-request-id"

// Request is one physical attempt.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string

	// Body is sent as is and never closed. ContentLength must match it.
	Body          io.Reader
	ContentLength int64

	// Read/write timeout of this attempt, zero keeps the connection default.
	Timeout time.Duration
}

type Response struct {
	Status     string
	StatusCode int
	Headers    http.Header

	// streamed, the caller closes it
	Body io.ReadCloser
}

// Connection performs a single attempt. Non-2xx responses are returned as
// *types.ServiceError and transport failures as *types.ConnectionError.
type Connection interface {
	Perform(ctx context.Context, request *Request) (*Response, error)
}

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type HTTPConnection struct {
	client HTTPClient
}

func NewHTTPConnection(client HTTPClient) *HTTPConnection {
	if client == nil {
		client = NewHttpClient(nil)
	}
	return &HTTPConnection{client: client}
}

func (c *HTTPConnection) Perform(ctx context.Context, request *Request) (*Response, error) {
	var timer *idleTimer
	var cancel context.CancelFunc
	if request.Timeout > 0 {
		ctx, cancel = context.WithCancel(WithReadWriteTimeout(ctx, request.Timeout))
		timer = newIdleTimer(request.Timeout, cancel)
		defer func() {
			if timer != nil {
				timer.stop()
				cancel()
			}
		}()
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.Method, request.URL, nil)
	if err != nil {
		return nil, &types.ConnectionError{Err: err}
	}

	// keep the caller's header casing, except for the headers net/http
	// would otherwise add on its own
	for k, v := range request.Headers {
		if len(k) == 0 {
			continue
		}
		if strings.EqualFold(k, "User-Agent") {
			k = http.CanonicalHeaderKey(k)
		}
		httpRequest.Header[k] = []string{v}
	}

	if request.Body != nil && request.ContentLength != 0 {
		var body io.Reader = request.Body
		if timer != nil {
			body = &idleReader{r: body, timer: timer}
		}
		httpRequest.Body = io.NopCloser(body)
		httpRequest.ContentLength = request.ContentLength
	} else {
		httpRequest.Body = http.NoBody
		httpRequest.ContentLength = 0
	}

	response, err := c.client.Do(httpRequest)
	if err != nil {
		return nil, &types.ConnectionError{Timeout: isTimeout(err) || (timer != nil && timer.expired()), Err: err}
	}

	if timer != nil {
		timer.touch()
		response.Body = &idleReadCloser{rc: response.Body, timer: timer, cancel: cancel}
		// the body owns the timer from here on
		timer = nil
	}

	if response.StatusCode/100 != 2 {
		return nil, serviceError(response)
	}

	return &Response{
		Status:     response.Status,
		StatusCode: response.StatusCode,
		Headers:    response.Header,
		Body:       response.Body,
	}, nil
}

func serviceError(response *http.Response) error {
	defer response.Body.Close()
	body, _ := io.ReadAll(response.Body)
	return types.ParseServiceError(response.StatusCode, response.Status,
		response.Header.Get(requestIDHeader), body)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
