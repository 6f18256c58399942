package signer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/netease/nos-go-sdk/nos/types"
	"github.com/netease/nos-go-sdk/nos/util"
)

// Query parameters that take part in the canonicalized resource.
var subResources = map[string]struct{}{
	"acl":           {},
	"location":      {},
	"versioning":    {},
	"versions":      {},
	"versionId":     {},
	"uploadId":      {},
	"uploads":       {},
	"partNumber":    {},
	"delete":        {},
	"deduplication": {},
	"crop":          {},
	"resize":        {},
}

const (
	// headers
	authorizationHeader = "Authorization"
	dateHeader          = "date"
	expiresHeader       = "expires"
	contentTypeHeader   = "content-type"
	contentMd5Header    = "content-md5"
	nosHeaderPrefix     = "x-nos-"

	authPrefix = "NOS"
)

type SignerNos struct {
}

// IsSubResource reports whether the query parameter is signed.
func IsSubResource(name string) bool {
	_, ok := subResources[name]
	return ok
}

func normalizeHeaderValue(v string) string {
	return strings.Trim(strings.TrimSpace(v), `'"`)
}

func (*SignerNos) calcCanonicalizedResource(signingCtx *SigningContext) string {
	resource := "/"
	if signingCtx.Bucket != nil {
		resource += *signingCtx.Bucket + "/"
	}
	if signingCtx.Key != nil {
		resource += util.EscapeKey(*signingCtx.Key)
	}

	var params types.Params
	for _, p := range signingCtx.Parameters {
		if IsSubResource(p.Name) {
			params = append(params, p)
		}
	}
	if len(params) == 0 {
		return resource
	}
	sort.SliceStable(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return resource + "?" + params.Encode()
}

func (s *SignerNos) calcStringToSign(signingCtx *SigningContext) string {
	/*
		StringToSign =
			VERB + "\n"
			+ Content-MD5 + "\n"
			+ Content-Type + "\n"
			+ (Expires or Date) + "\n"
			+ CanonicalizedNosHeaders
			+ CanonicalizedResource
		Signature = base64(hmac-sha256(AccessKeySecret, StringToSign))
	*/
	// names differing only in case collapse; sorting keeps the winner stable
	names := make([]string, 0, len(signingCtx.Headers))
	for k := range signingCtx.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	headers := make(map[string]string, len(names))
	for _, k := range names {
		headers[strings.ToLower(k)] = normalizeHeaderValue(signingCtx.Headers[k])
	}

	date := headers[expiresHeader]
	if date == "" {
		date = headers[dateHeader]
	}

	//CanonicalizedNosHeaders
	var keys []string
	for k := range headers {
		if strings.HasPrefix(k, nosHeaderPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var buf strings.Builder
	for _, k := range keys {
		buf.WriteString(k + ":" + headers[k] + "\n")
	}

	signingCtx.CanonicalizedResource = s.calcCanonicalizedResource(signingCtx)

	return signingCtx.Method + "\n" +
		headers[contentMd5Header] + "\n" +
		headers[contentTypeHeader] + "\n" +
		date + "\n" +
		buf.String() +
		signingCtx.CanonicalizedResource
}

func calcSignature(secret, stringToSign string) (string, error) {
	h := hmac.New(sha256.New, []byte(secret))
	if _, err := io.WriteString(h, stringToSign); err != nil {
		return "", err
	}
	return strings.TrimRight(base64.StdEncoding.EncodeToString(h.Sum(nil)), "\n"), nil
}

// Sign sets the Authorization header. A context without credentials is
// left untouched and goes out as an anonymous request.
func (s *SignerNos) Sign(ctx context.Context, signingCtx *SigningContext) error {
	if signingCtx == nil {
		return fmt.Errorf("SigningContext is null.")
	}

	if signingCtx.Credentials == nil {
		return nil
	}

	if signingCtx.Headers == nil {
		signingCtx.Headers = map[string]string{}
	}

	stringToSign := s.calcStringToSign(signingCtx)
	signingCtx.StringToSign = stringToSign

	signature, err := calcSignature(signingCtx.Credentials.AccessKeySecret, stringToSign)
	if err != nil {
		return err
	}

	util.SetHeader(signingCtx.Headers, authorizationHeader,
		fmt.Sprintf("%s %s:%s", authPrefix, signingCtx.Credentials.AccessKeyID, signature))

	return nil
}
