package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/netease/nos-go-sdk/nos/types"
	"github.com/stretchr/testify/assert"
)

func TestHTTPConnectionPerform(t *testing.T) {
	var gotMethod, gotBody, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotHeader = r.Header.Get("x-nos-meta-a")
		w.Header().Set("ETag", "\"5eb63bbbe01eeed093cb22bb8f5acdc3\"")
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	conn := NewHTTPConnection(nil)
	body := strings.NewReader("hello world")
	resp, err := conn.Perform(context.Background(), &Request{
		Method:        "PUT",
		URL:           server.URL + "/key",
		Headers:       map[string]string{"x-nos-meta-a": "1"},
		Body:          body,
		ContentLength: int64(body.Len()),
		Timeout:       5 * time.Second,
	})
	assert.Nil(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "\"5eb63bbbe01eeed093cb22bb8f5acdc3\"", resp.Headers.Get("ETag"))
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, "PUT", gotMethod)
	assert.Equal(t, "hello world", gotBody)
	assert.Equal(t, "1", gotHeader)
}

func TestHTTPConnectionServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-nos-request-id", "rid-123")
		w.WriteHeader(404)
		w.Write([]byte("<Error><Code>NoSuchKey</Code><Message>no such key</Message></Error>"))
	}))
	defer server.Close()

	conn := NewHTTPConnection(nil)
	resp, err := conn.Perform(context.Background(), &Request{Method: "GET", URL: server.URL + "/key"})
	assert.Nil(t, resp)
	assert.NotNil(t, err)

	se, ok := err.(*types.ServiceError)
	assert.True(t, ok)
	assert.Equal(t, 404, se.StatusCode)
	assert.Equal(t, "Not Found", se.Status)
	assert.Equal(t, "NoSuchKey", se.Code)
	assert.Equal(t, "no such key", se.Message)
	assert.Equal(t, "rid-123", se.RequestID)
}

func TestHTTPConnectionEmptyBody(t *testing.T) {
	var gotLength int64 = -2
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLength = r.ContentLength
	}))
	defer server.Close()

	conn := NewHTTPConnection(nil)
	resp, err := conn.Perform(context.Background(), &Request{
		Method: "PUT",
		URL:    server.URL + "/key",
		Body:   bytes.NewReader(nil),
	})
	assert.Nil(t, err)
	resp.Body.Close()
	assert.Equal(t, int64(0), gotLength)
}

func TestHTTPConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	conn := NewHTTPConnection(nil)
	_, err := conn.Perform(context.Background(), &Request{Method: "GET", URL: url})
	assert.NotNil(t, err)
	assert.Equal(t, types.KindConnection, types.KindOf(err))
}

func TestHTTPConnectionTimeout(t *testing.T) {
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()
	defer close(done)

	conn := NewHTTPConnection(nil)
	_, err := conn.Perform(context.Background(), &Request{
		Method:  "GET",
		URL:     server.URL,
		Timeout: 100 * time.Millisecond,
	})
	assert.NotNil(t, err)
	assert.Equal(t, types.KindConnectionTimeout, types.KindOf(err))
}

func TestHTTPConnectionTimeoutOnPooledConnection(t *testing.T) {
	done := make(chan struct{})
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte("warm"))
			return
		}
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()
	defer close(done)

	conn := NewHTTPConnection(nil)

	// the first attempt leaves its connection in the pool
	resp, err := conn.Perform(context.Background(), &Request{Method: "GET", URL: server.URL})
	assert.Nil(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	start := time.Now()
	_, err = conn.Perform(context.Background(), &Request{
		Method:  "GET",
		URL:     server.URL,
		Timeout: 200 * time.Millisecond,
	})
	assert.NotNil(t, err)
	assert.Equal(t, types.KindConnectionTimeout, types.KindOf(err))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 2, calls)
}

func TestHTTPConnectionTimeoutWhileReadingBody(t *testing.T) {
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10")
		w.WriteHeader(200)
		w.Write([]byte("abc"))
		w.(http.Flusher).Flush()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()
	defer close(done)

	conn := NewHTTPConnection(nil)
	resp, err := conn.Perform(context.Background(), &Request{
		Method:  "GET",
		URL:     server.URL,
		Timeout: 200 * time.Millisecond,
	})
	assert.Nil(t, err)
	defer resp.Body.Close()

	start := time.Now()
	data, err := io.ReadAll(resp.Body)
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, types.KindConnectionTimeout, types.KindOf(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestHTTPConnectionSlowButActiveBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 5; i++ {
			w.Write([]byte("x"))
			w.(http.Flusher).Flush()
			time.Sleep(80 * time.Millisecond)
		}
	}))
	defer server.Close()

	conn := NewHTTPConnection(nil)
	resp, err := conn.Perform(context.Background(), &Request{
		Method:  "GET",
		URL:     server.URL,
		Timeout: 200 * time.Millisecond,
	})
	assert.Nil(t, err)
	data, err := io.ReadAll(resp.Body)
	assert.Nil(t, err)
	assert.Equal(t, "xxxxx", string(data))
	assert.Nil(t, resp.Body.Close())
}

func TestHTTPConnectionUserAgent(t *testing.T) {
	var agents []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = r.Header["User-Agent"]
	}))
	defer server.Close()

	conn := NewHTTPConnection(nil)
	resp, err := conn.Perform(context.Background(), &Request{
		Method:  "GET",
		URL:     server.URL,
		Headers: map[string]string{"user-agent": "my-agent", "x-nos-meta-a": "1"},
	})
	assert.Nil(t, err)
	resp.Body.Close()
	assert.Equal(t, []string{"my-agent"}, agents)
}

func TestHTTPConnectionBodyNotClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
	}))
	defer server.Close()

	body := &closeTracker{Reader: strings.NewReader("abc")}
	conn := NewHTTPConnection(nil)
	resp, err := conn.Perform(context.Background(), &Request{
		Method:        "PUT",
		URL:           server.URL,
		Body:          body,
		ContentLength: 3,
	})
	assert.Nil(t, err)
	resp.Body.Close()
	assert.False(t, body.closed)
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}
