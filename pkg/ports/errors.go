package ports

import "errors"

// Errors shared by every backend. Callers match them with errors.Is.
var (
	ErrContainerOpen       = errors.New("container open failure")
	ErrContainerNotFound   = errors.New("container not found")
	ErrContainerUnreadable = errors.New("container unreadable")
	ErrCorruptHeader       = errors.New("corrupt container header")

	ErrNoVideoStream     = errors.New("no video stream")
	ErrUnsupportedCodec  = errors.New("unsupported codec")
	ErrParameterMismatch = errors.New("codec parameter mismatch")
	ErrCodecInit         = errors.New("codec init failure")
	ErrDecode            = errors.New("decode failure")
	ErrInvalidState      = errors.New("invalid decoder state")

	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	ErrConversion        = errors.New("conversion failure")

	ErrInference     = errors.New("inference failure")
	ErrUnrecoverable = errors.New("unrecoverable")
	ErrModelNotReady = errors.New("model not ready")

	ErrResourceAllocation = errors.New("resource allocation failure")
)
