package nos

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/netease/nos-go-sdk/nos/credentials"
	"github.com/netease/nos-go-sdk/nos/readers"
	"github.com/netease/nos-go-sdk/nos/retry"
	"github.com/netease/nos-go-sdk/nos/signer"
	"github.com/netease/nos-go-sdk/nos/transport"
	"github.com/netease/nos-go-sdk/nos/types"
	"github.com/netease/nos-go-sdk/nos/util"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Endpoint string

	EnableSSL bool

	Retryer retry.Retryer

	Signer signer.Signer

	CredentialsProvider credentials.CredentialsProvider

	Connection transport.Connection

	Serializer Serializer

	Logger logrus.FieldLogger

	// Read/write timeout of every attempt of one call, zero keeps the
	// connection's default.
	Timeout time.Duration
}

func (c Options) Copy() Options {
	return c
}

// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	options Options
}

func New(cfg *Config, optFns ...func(*Options)) *Client {
	if cfg == nil {
		cfg = LoadDefaultConfig()
	}

	options := Options{
		EnableSSL:           ToBool(cfg.EnableSSL),
		Retryer:             cfg.Retryer,
		CredentialsProvider: cfg.CredentialsProvider,
		Connection:          cfg.Connection,
		Serializer:          cfg.Serializer,
		Logger:              cfg.Logger,
	}

	resolveEndpoint(cfg, &options)
	resolveRetryer(cfg, &options)
	resolveConnection(cfg, &options)
	resolveSigner(cfg, &options)
	resolveSerializer(cfg, &options)
	resolveLogger(cfg, &options)

	for _, fn := range optFns {
		fn(&options)
	}

	return &Client{
		options: options,
	}
}

func resolveEndpoint(cfg *Config, o *Options) {
	endpoint := ToString(cfg.Endpoint)
	if strings.HasPrefix(endpoint, "https://") {
		o.EnableSSL = true
		endpoint = endpoint[len("https://"):]
	} else if strings.HasPrefix(endpoint, "http://") {
		endpoint = endpoint[len("http://"):]
	}
	endpoint = strings.TrimRight(endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	o.Endpoint = endpoint
}

func resolveRetryer(cfg *Config, o *Options) {
	if o.Retryer != nil {
		return
	}

	o.Retryer = retry.NewStandard(func(ro *retry.RetryOptions) {
		if cfg.MaxRetries != nil {
			ro.MaxRetries = *cfg.MaxRetries
		}
		if cfg.RetryOnStatus != nil {
			ro.RetryOnStatus = append([]int(nil), cfg.RetryOnStatus...)
		}
		ro.RetryOnTimeout = ToBool(cfg.RetryOnTimeout)
		if cfg.BackoffFactor != nil {
			ro.BackoffFactor = *cfg.BackoffFactor
		}
		if cfg.MaxBackoff != nil {
			ro.MaxBackoff = *cfg.MaxBackoff
		}
	})
}

func resolveConnection(cfg *Config, o *Options) {
	if o.Connection != nil {
		return
	}

	client := cfg.HttpClient
	if client == nil {
		client = transport.NewHttpClient(&transport.Config{
			ConnectTimeout:       cfg.ConnectTimeout,
			ReadWriteTimeout:     cfg.ReadWriteTimeout,
			MaxConnections:       cfg.MaxConnections,
			InsecureSkipVerify:   cfg.InsecureSkipVerify,
			EnabledRedirect:      cfg.EnabledRedirect,
			ProxyHost:            cfg.ProxyHost,
			ProxyFromEnvironment: cfg.ProxyFromEnvironment,
		})
	}
	o.Connection = transport.NewHTTPConnection(client)
}

func resolveSigner(cfg *Config, o *Options) {
	if o.Signer != nil {
		return
	}

	o.Signer = &signer.SignerNos{}
}

func resolveSerializer(cfg *Config, o *Options) {
	if o.Serializer != nil {
		return
	}

	o.Serializer = JSONSerializer{}
}

func resolveLogger(cfg *Config, o *Options) {
	if o.Logger != nil {
		return
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	o.Logger = logger
}

// InvokeOperation validates and serializes the input, signs it once and
// sends it, retrying failed attempts according to the client's Retryer.
// The error of the last attempt is returned as is.
func (c *Client) InvokeOperation(ctx context.Context, input *OperationInput, optFns ...func(*Options)) (*OperationOutput, error) {
	options := c.options.Copy()
	for _, fn := range optFns {
		fn(&options)
	}
	return c.invokeOperation(ctx, input, &options)
}

func (c *Client) invokeOperation(ctx context.Context, input *OperationInput, opts *Options) (*OperationOutput, error) {
	if input.Bucket != nil && !isValidBucketName(input.Bucket) {
		return nil, types.NewErrInvalidBucketName()
	}
	if input.Key != nil && !isValidObjectName(input.Key) {
		return nil, types.NewErrInvalidObjectName()
	}

	body, err := opts.Serializer.Dumps(input.Body)
	if err != nil {
		return nil, err
	}

	var length int64
	if body != nil {
		if body.IsStream() && !isBinaryMode(body.stream) {
			return nil, types.NewErrFileOpenMode()
		}
		if length, err = body.Len(); err != nil {
			return nil, err
		}
		if length > MaxObjectSize {
			return nil, types.NewErrEntityTooLarge()
		}
	}

	cred, err := resolveCredentials(ctx, opts.CredentialsProvider)
	if err != nil {
		return nil, err
	}

	signingCtx := &signer.SigningContext{
		Method:      input.Method,
		Bucket:      input.Bucket,
		Key:         input.Key,
		Parameters:  input.Parameters.Clone(),
		Headers:     copyHeaders(input.Headers),
		Credentials: cred,
	}

	url, err := buildRequestMetadata(ctx, signingCtx, body, opts)
	if err != nil {
		return nil, err
	}

	request := &transport.Request{
		Method:        input.Method,
		URL:           url,
		Headers:       signingCtx.Headers,
		ContentLength: length,
		Timeout:       opts.Timeout,
	}

	response, err := c.sendRequest(ctx, input, request, body, opts)
	if err != nil {
		return nil, err
	}

	return &OperationOutput{
		Input:      input,
		Status:     response.Status,
		StatusCode: response.StatusCode,
		Headers:    response.Headers,
		Body:       response.Body,
	}, nil
}

// sendRequest runs the attempts of one call on the calling goroutine.
func (c *Client) sendRequest(ctx context.Context, input *OperationInput, request *transport.Request, body *Payload, opts *Options) (*transport.Response, error) {
	var bodyStart int64
	if body != nil && body.IsStream() {
		var err error
		if bodyStart, err = body.stream.Seek(0, io.SeekCurrent); err != nil {
			return nil, err
		}
	}

	retryer := opts.Retryer
	logger := opts.Logger.WithField("op", input.OpName)
	maxAttempts := retryer.MaxAttempts()
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; ; attempt++ {
		if body != nil {
			if body.IsStream() {
				if attempt > 0 {
					if _, err := body.stream.Seek(bodyStart, io.SeekStart); err != nil {
						return nil, err
					}
				}
				request.Body = readers.NewContextReader(ctx, body.stream)
			} else {
				request.Body = bytes.NewReader(body.data)
			}
		}

		response, err := opts.Connection.Perform(ctx, request)
		if err == nil {
			return response, nil
		}

		if ctx.Err() != nil {
			return nil, err
		}

		if !retryer.IsErrorRetryable(err) {
			return nil, err
		}

		if attempt+1 >= maxAttempts {
			logger.WithFields(logrus.Fields{
				"attempts": attempt + 1,
				"error":    err,
			}).Warn("giving up after retries")
			return nil, err
		}

		delay, derr := retryer.RetryDelay(attempt, err)
		if derr != nil {
			return nil, err
		}

		logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"delay":   delay,
			"error":   err,
		}).Debug("retrying request")

		if serr := util.SleepWithContext(ctx, delay); serr != nil {
			return nil, serr
		}
	}
}

func resolveCredentials(ctx context.Context, provider credentials.CredentialsProvider) (*credentials.Credentials, error) {
	if provider == nil {
		return nil, nil
	}
	cred, err := provider.GetCredentials(ctx)
	if err != nil {
		return nil, err
	}
	if !cred.HasKeys() {
		return nil, nil
	}
	return &cred, nil
}

func copyHeaders(headers map[string]string) map[string]string {
	to := make(map[string]string, len(headers)+4)
	for k, v := range headers {
		to[k] = v
	}
	return to
}
