package nos

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"runtime"
	"strings"

	"github.com/netease/nos-go-sdk/nos/readers"
	"github.com/netease/nos-go-sdk/nos/signer"
	"github.com/netease/nos-go-sdk/nos/util"
)

func defaultUserAgent() string {
	return fmt.Sprintf("nos-go-sdk/%s (%s; %s) %s", Version(), runtime.GOOS,
		runtime.GOARCH, runtime.Version())
}

// buildRequestMetadata completes the headers of signingCtx (Date,
// User-Agent, Content-MD5 and Authorization) and returns the request URL.
// A streamed body is left at the offset it had on entry.
func buildRequestMetadata(ctx context.Context, signingCtx *signer.SigningContext, body *Payload, opts *Options) (string, error) {
	if signingCtx.Headers == nil {
		signingCtx.Headers = map[string]string{}
	}
	headers := signingCtx.Headers

	util.SetHeader(headers, HTTPHeaderDate, util.FormatDate(util.NowTime()))

	if _, ok := util.GetHeader(headers, HTTPHeaderUserAgent); !ok {
		headers[HTTPHeaderUserAgent] = defaultUserAgent()
	}

	if body != nil {
		md5sum, err := contentMD5(body)
		if err != nil {
			return "", err
		}
		util.SetHeader(headers, HTTPHeaderContentMD5, md5sum)
	}

	if err := opts.Signer.Sign(ctx, signingCtx); err != nil {
		return "", err
	}

	return buildURL(signingCtx, opts), nil
}

// contentMD5 returns the lowercase hex MD5 of the body.
func contentMD5(body *Payload) (string, error) {
	h := md5.New()
	if !body.IsStream() {
		h.Write(body.data)
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	if err := hashStream(h, body.stream); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashStream(h hash.Hash, stream io.ReadSeeker) error {
	offset, err := stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	_, err = readers.ForEachChunk(stream, ChunkSize, func(b []byte) {
		h.Write(b)
	})
	if err != nil {
		return err
	}

	_, err = stream.Seek(offset, io.SeekStart)
	return err
}

func buildURL(signingCtx *signer.SigningContext, opts *Options) string {
	var buf strings.Builder
	if opts.EnableSSL {
		buf.WriteString("https://")
	} else {
		buf.WriteString("http://")
	}

	if signingCtx.Bucket != nil {
		buf.WriteString(*signingCtx.Bucket)
		buf.WriteByte('.')
	}
	buf.WriteString(opts.Endpoint)
	buf.WriteByte('/')

	if signingCtx.Key != nil {
		buf.WriteString(util.EscapeKey(*signingCtx.Key))
	}

	if len(signingCtx.Parameters) > 0 {
		buf.WriteByte('?')
		buf.WriteString(signingCtx.Parameters.Encode())
	}
	return buf.String()
}
