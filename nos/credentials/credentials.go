package credentials

import (
	"context"
	"fmt"
	"os"
)

type Credentials struct {
	AccessKeyID     string
	AccessKeySecret string
}

// HasKeys reports whether both the access key id and the secret are set.
func (v Credentials) HasKeys() bool {
	return len(v.AccessKeyID) > 0 && len(v.AccessKeySecret) > 0
}

type CredentialsProvider interface {
	GetCredentials(ctx context.Context) (Credentials, error)
}

// CredentialsProviderFunc is a helper to wrap a function as a CredentialsProvider.
type CredentialsProviderFunc func(context.Context) (Credentials, error)

func (fn CredentialsProviderFunc) GetCredentials(ctx context.Context) (Credentials, error) {
	return fn(ctx)
}

type AnonymousCredentialsProvider struct{}

func NewAnonymousCredentialsProvider() CredentialsProvider {
	return &AnonymousCredentialsProvider{}
}

func (*AnonymousCredentialsProvider) GetCredentials(ctx context.Context) (Credentials, error) {
	return Credentials{AccessKeyID: "", AccessKeySecret: ""}, nil
}

type StaticCredentialsProvider struct {
	credentials Credentials
}

func NewStaticCredentialsProvider(id, secret string) CredentialsProvider {
	return &StaticCredentialsProvider{
		credentials: Credentials{
			AccessKeyID:     id,
			AccessKeySecret: secret,
		},
	}
}

func (s *StaticCredentialsProvider) GetCredentials(_ context.Context) (Credentials, error) {
	return s.credentials, nil
}

const (
	EnvAccessKeyID     = "NOS_ACCESS_KEY_ID"
	EnvAccessKeySecret = "NOS_ACCESS_KEY_SECRET"
)

type EnvironmentVariableCredentialsProvider struct{}

func NewEnvironmentVariableCredentialsProvider() CredentialsProvider {
	return &EnvironmentVariableCredentialsProvider{}
}

func (s *EnvironmentVariableCredentialsProvider) GetCredentials(ctx context.Context) (Credentials, error) {
	id := os.Getenv(EnvAccessKeyID)
	secret := os.Getenv(EnvAccessKeySecret)
	if id == "" || secret == "" {
		return Credentials{}, fmt.Errorf("access key id or access key secret is empty, check %s and %s", EnvAccessKeyID, EnvAccessKeySecret)
	}
	return Credentials{
		AccessKeyID:     id,
		AccessKeySecret: secret,
	}, nil
}
