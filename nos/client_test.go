package nos

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/netease/nos-go-sdk/nos/credentials"
	"github.com/netease/nos-go-sdk/nos/retry"
	"github.com/netease/nos-go-sdk/nos/transport"
	"github.com/netease/nos-go-sdk/nos/types"
	"github.com/netease/nos-go-sdk/nos/util"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

// fakeConnection records every attempt and replies with the next error of
// errs, succeeding once they run out.
type fakeConnection struct {
	errs     []error
	requests []*transport.Request
	bodies   []string
}

func (c *fakeConnection) Perform(ctx context.Context, request *transport.Request) (*transport.Response, error) {
	c.requests = append(c.requests, request)
	if request.Body != nil {
		data, _ := io.ReadAll(request.Body)
		c.bodies = append(c.bodies, string(data))
	}
	n := len(c.requests) - 1
	if n < len(c.errs) && c.errs[n] != nil {
		return nil, c.errs[n]
	}
	return &transport.Response{
		Status:     "200 OK",
		StatusCode: 200,
		Headers:    http.Header{},
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func newFakeClient(conn transport.Connection, optFns ...func(*Config)) *Client {
	cfg := LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider("ak", "sk")).
		WithConnection(conn)
	for _, fn := range optFns {
		fn(cfg)
	}
	return New(cfg)
}

func serviceErr(code int) error {
	return &types.ServiceError{StatusCode: code, Status: http.StatusText(code)}
}

func repeatErr(err error, n int) []error {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = err
	}
	return errs
}

func testObjectInput(body any) *OperationInput {
	return &OperationInput{
		OpName: "PutObject",
		Method: "PUT",
		Bucket: Ptr("bucket"),
		Key:    Ptr("key"),
		Body:   body,
	}
}

func TestRetryExhaustion(t *testing.T) {
	lastErr := serviceErr(503)
	conn := &fakeConnection{errs: []error{serviceErr(500), serviceErr(501), lastErr, nil}}
	client := newFakeClient(conn)

	_, err := client.InvokeOperation(context.TODO(), testObjectInput("data"))
	assert.Same(t, lastErr, err)
	assert.Len(t, conn.requests, 3)
}

func TestRetryThenSuccess(t *testing.T) {
	conn := &fakeConnection{errs: []error{serviceErr(500), &types.ConnectionError{Err: io.ErrUnexpectedEOF}}}
	client := newFakeClient(conn)

	output, err := client.InvokeOperation(context.TODO(), testObjectInput("data"))
	assert.Nil(t, err)
	assert.Equal(t, 200, output.StatusCode)
	assert.Len(t, conn.requests, 3)
	assert.Equal(t, []string{"data", "data", "data"}, conn.bodies)
}

func TestRetryNonRetryable(t *testing.T) {
	for _, e := range []error{
		serviceErr(400),
		serviceErr(404),
		&types.ConnectionError{Timeout: true, Err: io.ErrUnexpectedEOF},
		errors.New("unknown"),
	} {
		conn := &fakeConnection{errs: repeatErr(e, 3)}
		client := newFakeClient(conn)

		_, err := client.InvokeOperation(context.TODO(), testObjectInput("data"))
		assert.Same(t, e, err)
		assert.Len(t, conn.requests, 1)
	}
}

func TestRetryOnTimeout(t *testing.T) {
	timeout := &types.ConnectionError{Timeout: true, Err: io.ErrUnexpectedEOF}
	conn := &fakeConnection{errs: repeatErr(timeout, 5)}
	client := newFakeClient(conn, func(cfg *Config) {
		cfg.WithRetryOnTimeout(true).WithMaxRetries(4)
	})

	_, err := client.InvokeOperation(context.TODO(), testObjectInput("data"))
	assert.Same(t, timeout, err)
	assert.Len(t, conn.requests, 5)
}

func TestRetryCustomStatus(t *testing.T) {
	conn := &fakeConnection{errs: repeatErr(serviceErr(503), 3)}
	client := newFakeClient(conn, func(cfg *Config) {
		cfg.WithRetryOnStatus(500)
	})
	_, err := client.InvokeOperation(context.TODO(), testObjectInput("data"))
	assert.NotNil(t, err)
	assert.Len(t, conn.requests, 1)

	conn = &fakeConnection{errs: repeatErr(serviceErr(503), 3)}
	client = newFakeClient(conn, func(cfg *Config) {
		cfg.WithMaxRetries(0)
	})
	_, err = client.InvokeOperation(context.TODO(), testObjectInput("data"))
	assert.NotNil(t, err)
	assert.Len(t, conn.requests, 1)
}

func TestRetryBackoff(t *testing.T) {
	var delays []time.Duration
	orig := util.SleepWithContext
	util.SleepWithContext = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	defer func() { util.SleepWithContext = orig }()

	conn := &fakeConnection{errs: repeatErr(serviceErr(500), 4)}
	client := newFakeClient(conn, func(cfg *Config) {
		cfg.WithMaxRetries(3).WithBackoffFactor(100 * time.Millisecond)
	})
	_, err := client.InvokeOperation(context.TODO(), testObjectInput("data"))
	assert.NotNil(t, err)
	assert.Len(t, conn.requests, 4)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}, delays)
}

func TestRetryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	conn := &fakeConnection{errs: repeatErr(serviceErr(500), 3)}
	client := newFakeClient(conn, func(cfg *Config) {
		cfg.WithBackoffFactor(time.Hour)
	})

	orig := util.SleepWithContext
	util.SleepWithContext = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}
	defer func() { util.SleepWithContext = orig }()

	_, err := client.InvokeOperation(ctx, testObjectInput("data"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, conn.requests, 1)
}

func TestRetryStreamSeekBack(t *testing.T) {
	body := strings.NewReader("0123456789")
	body.Seek(4, io.SeekStart)

	conn := &fakeConnection{errs: repeatErr(serviceErr(500), 2)}
	client := newFakeClient(conn)

	_, err := client.InvokeOperation(context.TODO(), testObjectInput(body))
	assert.Nil(t, err)
	assert.Equal(t, []string{"456789", "456789", "456789"}, conn.bodies)
	for _, r := range conn.requests {
		assert.Equal(t, int64(6), r.ContentLength)
		assert.Equal(t, "e35cf7b66449df565f93c607d5a81d09", r.Headers["Content-MD5"])
	}
}

func TestRetrySignsOnce(t *testing.T) {
	conn := &fakeConnection{errs: repeatErr(serviceErr(500), 2)}
	client := newFakeClient(conn)

	_, err := client.InvokeOperation(context.TODO(), testObjectInput("data"))
	assert.Nil(t, err)
	assert.Len(t, conn.requests, 3)
	auth := conn.requests[0].Headers["Authorization"]
	date := conn.requests[0].Headers["Date"]
	for _, r := range conn.requests[1:] {
		assert.Equal(t, auth, r.Headers["Authorization"])
		assert.Equal(t, date, r.Headers["Date"])
	}
}

func TestRetryLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	conn := &fakeConnection{errs: repeatErr(serviceErr(500), 3)}
	client := newFakeClient(conn, func(cfg *Config) {
		cfg.WithLogger(logger)
	})
	_, err := client.InvokeOperation(context.TODO(), testObjectInput("data"))
	assert.NotNil(t, err)

	entries := hook.AllEntries()
	assert.Len(t, entries, 3)
	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "PutObject", entries[0].Data["op"])
	assert.Equal(t, 1, entries[0].Data["attempt"])
	assert.Equal(t, logrus.WarnLevel, entries[2].Level)
	assert.Equal(t, 3, entries[2].Data["attempts"])
}

type textModeFile struct {
	*strings.Reader
}

func (textModeFile) IsBinaryMode() bool { return false }

type sizedReader struct {
	size   int64
	offset int64
}

func (r *sizedReader) Read(p []byte) (int, error) { return 0, io.EOF }

func (r *sizedReader) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		r.offset = offset
	case io.SeekCurrent:
		r.offset += offset
	case io.SeekEnd:
		r.offset = r.size + offset
	}
	return r.offset, nil
}

func TestPreflightValidation(t *testing.T) {
	cases := []struct {
		input *OperationInput
		kind  types.Kind
	}{
		{&OperationInput{Method: "GET", Bucket: Ptr("")}, types.KindInvalidBucketName},
		{&OperationInput{Method: "GET", Bucket: Ptr("bucket"), Key: Ptr("")}, types.KindInvalidObjectName},
		{testObjectInput(make(chan int)), types.KindSerialization},
		{testObjectInput(textModeFile{strings.NewReader("abc")}), types.KindFileOpenMode},
		{testObjectInput(&sizedReader{size: MaxObjectSize + 1}), types.KindService},
	}

	for _, c := range cases {
		conn := &fakeConnection{}
		client := newFakeClient(conn)
		_, err := client.InvokeOperation(context.TODO(), c.input)
		assert.Equal(t, c.kind, types.KindOf(err))
		assert.Len(t, conn.requests, 0)
	}

	// the size limit applies to what is left of the stream
	conn := &fakeConnection{}
	client := newFakeClient(conn)
	body := &sizedReader{size: MaxObjectSize + 10}
	body.Seek(10, io.SeekStart)
	_, err := client.InvokeOperation(context.TODO(), testObjectInput(body))
	assert.Nil(t, err)
	assert.Len(t, conn.requests, 1)

	conn = &fakeConnection{}
	client = newFakeClient(conn)
	_, err = client.InvokeOperation(context.TODO(), testObjectInput(&sizedReader{size: MaxObjectSize + 1}))
	var serr *ServiceError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, 400, serr.StatusCode)
	assert.Equal(t, "Bad Request", serr.Status)
	assert.Equal(t, "EntityTooLarge", serr.Code)
	assert.Equal(t, "Request Entity Too Large", serr.Message)
}

func TestNewClientDefaults(t *testing.T) {
	client := New(nil)
	assert.Equal(t, DefaultEndpoint, client.options.Endpoint)
	assert.False(t, client.options.EnableSSL)
	assert.Equal(t, 3, client.options.Retryer.MaxAttempts())
	assert.NotNil(t, client.options.Connection)
	assert.NotNil(t, client.options.Signer)
	assert.IsType(t, JSONSerializer{}, client.options.Serializer)

	client = New(LoadDefaultConfig().WithEndpoint("https://nos.example.com/"))
	assert.Equal(t, "nos.example.com", client.options.Endpoint)
	assert.True(t, client.options.EnableSSL)

	client = New(LoadDefaultConfig().WithRetryer(retry.NopRetryer{}))
	assert.Equal(t, 1, client.options.Retryer.MaxAttempts())
}
