//go:build cgo

package ffmpeg

import (
	"github.com/asticode/go-astiav"
	"github.com/user/framesampler/pkg/ports"
)

var codecIDs = map[ports.CodecID]astiav.CodecID{
	ports.CodecH264:       astiav.CodecIDH264,
	ports.CodecHEVC:       astiav.CodecIDHevc,
	ports.CodecAV1:        astiav.CodecIDAv1,
	ports.CodecVP8:        astiav.CodecIDVp8,
	ports.CodecVP9:        astiav.CodecIDVp9,
	ports.CodecMPEG4:      astiav.CodecIDMpeg4,
	ports.CodecMPEG2Video: astiav.CodecIDMpeg2Video,
	ports.CodecMJPEG:      astiav.CodecIDMjpeg,
	ports.CodecAAC:        astiav.CodecIDAac,
	ports.CodecMP3:        astiav.CodecIDMp3,
	ports.CodecOpus:       astiav.CodecIDOpus,
}

func toAstiavCodec(c ports.CodecID) (astiav.CodecID, bool) {
	id, ok := codecIDs[c]
	return id, ok
}

// fromAstiavCodec uses the libavcodec short name, which is what
// ports.CodecID values are.
func fromAstiavCodec(id astiav.CodecID) ports.CodecID {
	if id == astiav.CodecIDNone {
		return ports.CodecUnknown
	}
	return ports.CodecID(id.Name())
}

func fromAstiavMediaType(m astiav.MediaType) ports.MediaType {
	switch m {
	case astiav.MediaTypeVideo:
		return ports.MediaTypeVideo
	case astiav.MediaTypeAudio:
		return ports.MediaTypeAudio
	case astiav.MediaTypeSubtitle:
		return ports.MediaTypeSubtitle
	case astiav.MediaTypeData, astiav.MediaTypeAttachment:
		return ports.MediaTypeData
	default:
		return ports.MediaTypeUnknown
	}
}

func toAstiavPixelFormat(f ports.PixelFormat) astiav.PixelFormat {
	switch f {
	case ports.PixelFormatRGB24:
		return astiav.PixelFormatRgb24
	case ports.PixelFormatRGBA:
		return astiav.PixelFormatRgba
	case ports.PixelFormatBGRA:
		return astiav.PixelFormatBgra
	case ports.PixelFormatYUV420P:
		return astiav.PixelFormatYuv420P
	}
	return astiav.FindPixelFormatByName(string(f))
}
