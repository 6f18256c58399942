package nos

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/netease/nos-go-sdk/nos/credentials"
	"github.com/netease/nos-go-sdk/nos/transport"
	"github.com/stretchr/testify/assert"
)

const testEndpoint = "nos-test.example.com"

func testSetupMockServer(t *testing.T, statusCode int, headers map[string]string, body []byte,
	chkfunc func(t *testing.T, r *http.Request)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// check request
		chkfunc(t, r)

		// headers
		for k, v := range headers {
			w.Header().Set(k, v)
		}

		// status code
		w.WriteHeader(statusCode)

		// body
		w.Write(body)
	}))
}

// testMockClient sends every request to server whatever the bucket host is.
func testMockClient(server *httptest.Server, optFns ...func(*Config)) *Client {
	addr := server.Listener.Addr().String()
	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
	cfg := LoadDefaultConfig().
		WithEndpoint(testEndpoint).
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider("ak", "sk")).
		WithHttpClient(httpClient)
	for _, fn := range optFns {
		fn(cfg)
	}
	return New(cfg)
}

var testInvokeOperationCases = []struct {
	StatusCode     int
	Headers        map[string]string
	Body           []byte
	CheckRequestFn func(t *testing.T, r *http.Request)
	Input          *OperationInput
	CheckOutputFn  func(t *testing.T, o *OperationOutput)
}{
	{
		200,
		map[string]string{
			"x-nos-request-id": "9b8932d70aa000000154d729c6b0840e",
			"Content-Type":     "application/xml",
		},
		[]byte(`<ListBucketResult><Name>bucket</Name></ListBucketResult>`),
		func(t *testing.T, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, "bucket."+testEndpoint, r.Host)
			assert.Equal(t, "/?prefix=a%2Fb&max-keys=10", r.RequestURI)
			assert.Equal(t, "", r.Header.Get("Content-MD5"))
			assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "NOS ak:"))
			assert.True(t, strings.HasSuffix(r.Header.Get("Date"), " Asia/Shanghai"))
			assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "nos-go-sdk/"))
		},
		&OperationInput{
			OpName:     "ListObjects",
			Method:     "GET",
			Bucket:     Ptr("bucket"),
			Parameters: Params{{Name: "prefix", Value: Ptr("a/b")}, {Name: "max-keys", Value: Ptr("10")}},
		},
		func(t *testing.T, o *OperationOutput) {
			assert.Equal(t, 200, o.StatusCode)
			assert.Equal(t, "200 OK", o.Status)
			assert.Equal(t, "9b8932d70aa000000154d729c6b0840e", o.Headers.Get(HeaderNosRequestID))
			data, _ := io.ReadAll(o.Body)
			assert.Equal(t, "<ListBucketResult><Name>bucket</Name></ListBucketResult>", string(data))
		},
	},
	{
		200,
		map[string]string{
			"ETag": "\"fcea920f7412b5da7be0cf42b8c93759\"",
		},
		nil,
		func(t *testing.T, r *http.Request) {
			assert.Equal(t, "PUT", r.Method)
			assert.Equal(t, "/dir%2Fobj", r.RequestURI)
			assert.Equal(t, "fcea920f7412b5da7be0cf42b8c93759", r.Header.Get("Content-MD5"))
			assert.Equal(t, "v", r.Header.Get("x-nos-meta-k"))
			data, _ := io.ReadAll(r.Body)
			assert.Equal(t, "1234567", string(data))
		},
		&OperationInput{
			OpName:  "PutObject",
			Method:  "PUT",
			Bucket:  Ptr("bucket"),
			Key:     Ptr("/dir/obj"),
			Headers: map[string]string{"x-nos-meta-k": "v"},
			Body:    "1234567",
		},
		func(t *testing.T, o *OperationOutput) {
			assert.Equal(t, 200, o.StatusCode)
			assert.Equal(t, "\"fcea920f7412b5da7be0cf42b8c93759\"", o.Headers.Get("ETag"))
		},
	},
}

func TestInvokeOperation(t *testing.T) {
	for _, c := range testInvokeOperationCases {
		server := testSetupMockServer(t, c.StatusCode, c.Headers, c.Body, c.CheckRequestFn)
		client := testMockClient(server)
		output, err := client.InvokeOperation(context.TODO(), c.Input)
		assert.Nil(t, err)
		c.CheckOutputFn(t, output)
		output.Body.Close()
		server.Close()
	}
}

func TestInvokeOperationAnonymous(t *testing.T) {
	server := testSetupMockServer(t, 200, nil, nil, func(t *testing.T, r *http.Request) {
		assert.Equal(t, "", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Date"))
	})
	defer server.Close()

	client := testMockClient(server, func(cfg *Config) {
		cfg.WithCredentialsProvider(credentials.NewAnonymousCredentialsProvider())
	})
	output, err := client.InvokeOperation(context.TODO(), &OperationInput{
		OpName: "GetObject",
		Method: "GET",
		Bucket: Ptr("bucket"),
		Key:    Ptr("key"),
	})
	assert.Nil(t, err)
	output.Body.Close()
}

func TestInvokeOperationServiceError(t *testing.T) {
	calls := 0
	server := testSetupMockServer(t, 403,
		map[string]string{"x-nos-request-id": "rid"},
		[]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`),
		func(t *testing.T, r *http.Request) { calls++ })
	defer server.Close()

	client := testMockClient(server)
	output, err := client.InvokeOperation(context.TODO(), &OperationInput{
		OpName: "GetObject",
		Method: "GET",
		Bucket: Ptr("bucket"),
		Key:    Ptr("key"),
	})
	assert.Nil(t, output)
	var serr *ServiceError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, 403, serr.StatusCode)
	assert.Equal(t, "Forbidden", serr.Status)
	assert.Equal(t, "AccessDenied", serr.Code)
	assert.Equal(t, "denied", serr.Message)
	assert.Equal(t, "rid", serr.RequestID)
	assert.Equal(t, 1, calls)
}

func TestInvokeOperationRetryOnStatus(t *testing.T) {
	calls := 0
	server := testSetupMockServer(t, 503, nil, nil, func(t *testing.T, r *http.Request) {
		calls++
		data, _ := io.ReadAll(r.Body)
		assert.Equal(t, "hello world", string(data))
	})
	defer server.Close()

	client := testMockClient(server)
	_, err := client.InvokeOperation(context.TODO(), &OperationInput{
		OpName: "PutObject",
		Method: "PUT",
		Bucket: Ptr("bucket"),
		Key:    Ptr("key"),
		Body:   strings.NewReader("hello world"),
	})
	var serr *ServiceError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, 503, serr.StatusCode)
	assert.Equal(t, 3, calls)
}

func TestInvokeOperationWithTransportConnection(t *testing.T) {
	server := testSetupMockServer(t, 200, nil, nil, func(t *testing.T, r *http.Request) {})
	defer server.Close()

	conn := transport.NewHTTPConnection(nil)
	client := New(LoadDefaultConfig().WithConnection(conn), func(o *Options) {
		o.Endpoint = server.Listener.Addr().String()
	})
	output, err := client.InvokeOperation(context.TODO(), &OperationInput{
		OpName: "ListMultipartUploads",
		Method: "GET",
	})
	assert.Nil(t, err)
	assert.Equal(t, 200, output.StatusCode)
	output.Body.Close()
}

func httpServerFunc(fn http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(fn)
}
