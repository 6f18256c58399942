package nos

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/netease/nos-go-sdk/nos/types"
)

// Payload is a serialized request body: either an in-memory buffer or a
// seekable stream read from its current offset.
type Payload struct {
	data   []byte
	stream io.ReadSeeker
}

func BytesPayload(b []byte) *Payload {
	return &Payload{data: b}
}

func StreamPayload(rs io.ReadSeeker) *Payload {
	return &Payload{stream: rs}
}

func (p *Payload) IsStream() bool {
	return p.stream != nil
}

// Len returns the number of bytes that will be sent. For a stream that is
// what remains after its current offset.
func (p *Payload) Len() (int64, error) {
	if p.stream == nil {
		return int64(len(p.data)), nil
	}
	return seekerLen(p.stream)
}

// BinaryModer is implemented by file-like bodies that know how they were
// opened. A body reporting false is rejected before sending.
type BinaryModer interface {
	IsBinaryMode() bool
}

type Serializer interface {
	Dumps(v any) (*Payload, error)
}

// Plain readers are buffered up to this many bytes.
var maxBufferedBody = MaxObjectSize

// JSONSerializer passes strings, byte slices and streams through and JSON
// encodes everything else.
type JSONSerializer struct{}

func (s JSONSerializer) Dumps(v any) (*Payload, error) {
	switch body := v.(type) {
	case nil:
		return nil, nil
	case *Payload:
		return body, nil
	case string:
		return BytesPayload([]byte(body)), nil
	case []byte:
		return BytesPayload(body), nil
	case io.ReadSeeker:
		return StreamPayload(body), nil
	case io.Reader:
		data, err := io.ReadAll(io.LimitReader(body, maxBufferedBody+1))
		if err != nil {
			return nil, types.NewErrSerialization(v, err)
		}
		if int64(len(data)) > maxBufferedBody {
			return nil, types.NewErrEntityTooLarge()
		}
		return BytesPayload(data), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.normalize(v)); err != nil {
		return nil, types.NewErrSerialization(v, err)
	}
	return BytesPayload(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Default converts values without a natural JSON form.
func (JSONSerializer) Default(v any) (any, bool) {
	switch d := v.(type) {
	case time.Time:
		return d.Format(time.RFC3339Nano), true
	case *time.Time:
		if d == nil {
			return nil, true
		}
		return d.Format(time.RFC3339Nano), true
	case uuid.UUID:
		return d.String(), true
	case *big.Float:
		if d == nil {
			return nil, true
		}
		f, _ := d.Float64()
		return f, true
	}
	return v, false
}

func (s JSONSerializer) normalize(v any) any {
	if d, ok := s.Default(v); ok {
		return d
	}
	switch c := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(c))
		for k, e := range c {
			out[k] = s.normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, e := range c {
			out[i] = s.normalize(e)
		}
		return out
	}
	return v
}
