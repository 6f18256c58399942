package transport

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

const (
	DefaultConnectTimeout        = 10 * time.Second
	DefaultReadWriteTimeout      = 20 * time.Second
	DefaultIdleConnectionTimeout = 50 * time.Second
	DefaultExpectContinueTimeout = 1 * time.Second
	DefaultKeepAliveTimeout      = 30 * time.Second

	// one pool per host, as many hosts as buckets
	DefaultMaxConnections = 100
)

type Config struct {
	ConnectTimeout        *time.Duration
	ReadWriteTimeout      *time.Duration
	IdleConnectionTimeout *time.Duration
	KeepAliveTimeout      *time.Duration
	MaxConnections        *int
	InsecureSkipVerify    *bool
	EnabledRedirect       *bool
	ProxyHost             *string
	ProxyFromEnvironment  *bool
}

func (c *Config) setDefaults() {
	if c.ConnectTimeout == nil {
		c.ConnectTimeout = ptr(DefaultConnectTimeout)
	}
	if c.ReadWriteTimeout == nil {
		c.ReadWriteTimeout = ptr(DefaultReadWriteTimeout)
	}
	if c.IdleConnectionTimeout == nil {
		c.IdleConnectionTimeout = ptr(DefaultIdleConnectionTimeout)
	}
	if c.KeepAliveTimeout == nil {
		c.KeepAliveTimeout = ptr(DefaultKeepAliveTimeout)
	}
	if c.MaxConnections == nil {
		c.MaxConnections = ptr(DefaultMaxConnections)
	}
}

// proxyFunc returns the proxy selector for cfg, or nil for direct connections.
func proxyFunc(cfg *Config) func(*http.Request) (*url.URL, error) {
	if cfg.ProxyHost != nil && *cfg.ProxyHost != "" {
		proxyURL, err := url.Parse(*cfg.ProxyHost)
		if err == nil {
			return http.ProxyURL(proxyURL)
		}
	}
	if cfg.ProxyFromEnvironment != nil && *cfg.ProxyFromEnvironment {
		fn := httpproxy.FromEnvironment().ProxyFunc()
		return func(r *http.Request) (*url.URL, error) {
			return fn(r.URL)
		}
	}
	return nil
}

func NewTransportCustom(fns ...func(*Config)) *http.Transport {
	cfg := &Config{}
	for _, fn := range fns {
		fn(cfg)
	}
	cfg.setDefaults()

	tr := &http.Transport{
		DialContext:           newDialer(cfg).DialContext,
		TLSHandshakeTimeout:   *cfg.ConnectTimeout,
		IdleConnTimeout:       *cfg.IdleConnectionTimeout,
		MaxIdleConns:          *cfg.MaxConnections,
		MaxIdleConnsPerHost:   *cfg.MaxConnections,
		ExpectContinueTimeout: DefaultExpectContinueTimeout,
		Proxy:                 proxyFunc(cfg),
	}

	if cfg.InsecureSkipVerify != nil && *cfg.InsecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return tr
}

// NewHttpClient returns a client sharing one pooled transport. It is safe
// for concurrent use.
func NewHttpClient(cfg *Config, fns ...func(*Config)) *http.Client {
	if cfg == nil {
		cfg = &Config{}
	}
	fns = append([]func(*Config){func(c *Config) { *c = *cfg }}, fns...)
	client := &http.Client{
		Transport: NewTransportCustom(fns...),
	}
	if cfg.EnabledRedirect == nil || !*cfg.EnabledRedirect {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}

func ptr[T any](v T) *T {
	return &v
}
