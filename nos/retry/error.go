package retry

import (
	"github.com/netease/nos-go-sdk/nos/types"
)

// KindRetryable classifies errors by their kind.
type KindRetryable struct {
	RetryOnStatus  []int
	RetryOnTimeout bool
}

func (r KindRetryable) IsErrorRetryable(err error) bool {
	switch types.KindOf(err) {
	case types.KindConnectionTimeout:
		return r.RetryOnTimeout
	case types.KindConnection:
		return true
	case types.KindService:
		return r.isRetryableStatus(err)
	case types.KindInvalidBucketName,
		types.KindInvalidObjectName,
		types.KindFileOpenMode,
		types.KindSerialization,
		types.KindXmlParse,
		types.KindMultiObjectDelete,
		types.KindUnknown:
		return false
	}
	return false
}

func (r KindRetryable) isRetryableStatus(err error) bool {
	se, ok := asServiceError(err)
	if !ok {
		return false
	}
	for _, code := range r.RetryOnStatus {
		if se.StatusCode == code {
			return true
		}
	}
	return false
}
