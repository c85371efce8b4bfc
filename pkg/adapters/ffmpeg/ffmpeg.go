// Package ffmpeg implements the container reader, decoder session and
// pixel converter on libavformat, libavcodec and libswscale via go-astiav.
//
// The implementation needs cgo and the FFmpeg 7 development libraries.
// Without cgo every entry point returns ErrUnavailable.
package ffmpeg

import "errors"

// Backend is the name this package registers decoders under.
const Backend = "ffmpeg"

var (
	// ErrUnavailable is returned when the package was built without cgo.
	ErrUnavailable = errors.New("ffmpeg: built without cgo")

	errAlloc = errors.New("ffmpeg: allocation failed")
)
