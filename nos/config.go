package nos

import (
	"os"
	"time"

	"github.com/netease/nos-go-sdk/nos/credentials"
	"github.com/netease/nos-go-sdk/nos/retry"
	"github.com/netease/nos-go-sdk/nos/transport"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type HTTPClient = transport.HTTPClient

type Config struct {
	// The domain name of the NOS service, without the bucket.
	Endpoint *string

	// Use https instead of http.
	EnableSSL *bool

	// The credentials provider to use when signing requests.
	// Requests are sent anonymously when it yields no keys.
	CredentialsProvider credentials.CredentialsProvider

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries *int

	// Service errors carrying one of these status codes are retried.
	RetryOnStatus []int

	// Retry attempts that timed out.
	RetryOnTimeout *bool

	// The delay after attempt n is min(MaxBackoff, BackoffFactor * 2^n).
	BackoffFactor *time.Duration
	MaxBackoff    *time.Duration

	// Retryer guides how HTTP requests should be retried in case of recoverable failures.
	// When set, the retry fields above are ignored.
	Retryer retry.Retryer

	// Connect timeout
	ConnectTimeout *time.Duration

	// read & write timeout of a single attempt
	ReadWriteTimeout *time.Duration

	// Number of pooled connections kept per host.
	MaxConnections *int

	// Skip server certificate verification
	InsecureSkipVerify *bool

	// Enable http redirect or not. Default is disable
	EnabledRedirect *bool

	// Flag of using proxy host.
	ProxyHost *string

	// Read the proxy setting from the environment variables.
	// HTTP_PROXY, HTTPS_PROXY and NO_PROXY (or the lowercase versions thereof).
	ProxyFromEnvironment *bool

	// The HTTP client to invoke API calls with. Defaults to client's default HTTP
	// implementation if nil.
	HttpClient HTTPClient

	// Performs a single attempt. Defaults to an HTTP connection over HttpClient.
	Connection transport.Connection

	// Turns request bodies into bytes or streams. Defaults to JSONSerializer.
	Serializer Serializer

	Logger logrus.FieldLogger
}

func NewConfig() *Config {
	return &Config{}
}

func (c Config) Copy() Config {
	cp := c
	cp.RetryOnStatus = append([]int(nil), c.RetryOnStatus...)
	return cp
}

func LoadDefaultConfig() *Config {
	config := &Config{
		Endpoint:            Ptr(DefaultEndpoint),
		CredentialsProvider: credentials.NewAnonymousCredentialsProvider(),
		MaxRetries:          Ptr(retry.DefaultMaxRetries),
		RetryOnStatus:       append([]int(nil), retry.DefaultRetryOnStatus...),
		RetryOnTimeout:      Ptr(false),
	}
	return config
}

func (c *Config) WithEndpoint(endpoint string) *Config {
	c.Endpoint = Ptr(endpoint)
	return c
}

func (c *Config) WithEnableSSL(value bool) *Config {
	c.EnableSSL = Ptr(value)
	return c
}

func (c *Config) WithCredentialsProvider(provider credentials.CredentialsProvider) *Config {
	c.CredentialsProvider = provider
	return c
}

func (c *Config) WithMaxRetries(value int) *Config {
	c.MaxRetries = Ptr(value)
	return c
}

func (c *Config) WithRetryOnStatus(codes ...int) *Config {
	c.RetryOnStatus = append([]int(nil), codes...)
	return c
}

func (c *Config) WithRetryOnTimeout(value bool) *Config {
	c.RetryOnTimeout = Ptr(value)
	return c
}

func (c *Config) WithBackoffFactor(value time.Duration) *Config {
	c.BackoffFactor = Ptr(value)
	return c
}

func (c *Config) WithMaxBackoff(value time.Duration) *Config {
	c.MaxBackoff = Ptr(value)
	return c
}

func (c *Config) WithRetryer(retryer retry.Retryer) *Config {
	c.Retryer = retryer
	return c
}

func (c *Config) WithConnectTimeout(value time.Duration) *Config {
	c.ConnectTimeout = Ptr(value)
	return c
}

func (c *Config) WithReadWriteTimeout(value time.Duration) *Config {
	c.ReadWriteTimeout = Ptr(value)
	return c
}

func (c *Config) WithMaxConnections(value int) *Config {
	c.MaxConnections = Ptr(value)
	return c
}

func (c *Config) WithInsecureSkipVerify(value bool) *Config {
	c.InsecureSkipVerify = Ptr(value)
	return c
}

func (c *Config) WithEnabledRedirect(value bool) *Config {
	c.EnabledRedirect = Ptr(value)
	return c
}

func (c *Config) WithProxyHost(value string) *Config {
	c.ProxyHost = Ptr(value)
	return c
}

func (c *Config) WithProxyFromEnvironment(value bool) *Config {
	c.ProxyFromEnvironment = Ptr(value)
	return c
}

func (c *Config) WithHttpClient(client HTTPClient) *Config {
	c.HttpClient = client
	return c
}

func (c *Config) WithConnection(conn transport.Connection) *Config {
	c.Connection = conn
	return c
}

func (c *Config) WithSerializer(serializer Serializer) *Config {
	c.Serializer = serializer
	return c
}

func (c *Config) WithLogger(logger logrus.FieldLogger) *Config {
	c.Logger = logger
	return c
}

// fileConfig is the on-disk layout read by LoadConfigFile.
type fileConfig struct {
	Endpoint        string `yaml:"endpoint"`
	EnableSSL       *bool  `yaml:"enable_ssl"`
	AccessKeyID     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`

	MaxRetries     *int           `yaml:"max_retries"`
	RetryOnStatus  []int          `yaml:"retry_on_status"`
	RetryOnTimeout *bool          `yaml:"retry_on_timeout"`
	BackoffFactor  *time.Duration `yaml:"backoff_factor"`
	MaxBackoff     *time.Duration `yaml:"max_backoff"`

	ConnectTimeout   *time.Duration `yaml:"connect_timeout"`
	ReadWriteTimeout *time.Duration `yaml:"read_write_timeout"`
	MaxConnections   *int           `yaml:"max_connections"`

	ProxyHost            string `yaml:"proxy_host"`
	ProxyFromEnvironment *bool  `yaml:"proxy_from_environment"`
}

// LoadConfigFile reads a YAML config file on top of LoadDefaultConfig.
//
//	endpoint: nos-eastchina1.126.net
//	access_key_id: ...
//	access_key_secret: ...
//	max_retries: 2
//	backoff_factor: 100ms
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", path)
	}

	cfg := LoadDefaultConfig()
	if fc.Endpoint != "" {
		cfg.WithEndpoint(fc.Endpoint)
	}
	if fc.AccessKeyID != "" || fc.AccessKeySecret != "" {
		cfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(fc.AccessKeyID, fc.AccessKeySecret))
	}
	if fc.ProxyHost != "" {
		cfg.WithProxyHost(fc.ProxyHost)
	}
	if len(fc.RetryOnStatus) > 0 {
		cfg.WithRetryOnStatus(fc.RetryOnStatus...)
	}
	cfg.EnableSSL = orPtr(fc.EnableSSL, cfg.EnableSSL)
	cfg.MaxRetries = orPtr(fc.MaxRetries, cfg.MaxRetries)
	cfg.RetryOnTimeout = orPtr(fc.RetryOnTimeout, cfg.RetryOnTimeout)
	cfg.BackoffFactor = orPtr(fc.BackoffFactor, cfg.BackoffFactor)
	cfg.MaxBackoff = orPtr(fc.MaxBackoff, cfg.MaxBackoff)
	cfg.ConnectTimeout = orPtr(fc.ConnectTimeout, cfg.ConnectTimeout)
	cfg.ReadWriteTimeout = orPtr(fc.ReadWriteTimeout, cfg.ReadWriteTimeout)
	cfg.MaxConnections = orPtr(fc.MaxConnections, cfg.MaxConnections)
	cfg.ProxyFromEnvironment = orPtr(fc.ProxyFromEnvironment, cfg.ProxyFromEnvironment)

	return cfg, nil
}

func orPtr[T any](v, def *T) *T {
	if v != nil {
		return v
	}
	return def
}
