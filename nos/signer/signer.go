package signer

import (
	"context"

	"github.com/netease/nos-go-sdk/nos/credentials"
	"github.com/netease/nos-go-sdk/nos/types"
)

type SigningContext struct {
	//input
	Method      string
	Bucket      *string
	Key         *string
	Parameters  types.Params
	Headers     map[string]string
	Credentials *credentials.Credentials

	// output
	StringToSign          string
	CanonicalizedResource string
}

type Signer interface {
	Sign(ctx context.Context, signingCtx *SigningContext) error
}

type NopSigner struct{}

func (*NopSigner) Sign(ctx context.Context, signingCtx *SigningContext) error {
	return nil
}
