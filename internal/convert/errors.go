package convert

import "errors"

// Sentinel errors used to classify conversion failures. Callers match with
// errors.Is to decide how to report an item failure.
var (
	ErrDecode            = errors.New("decode error")
	ErrEncode            = errors.New("encode error")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidSettings   = errors.New("invalid settings")
)
