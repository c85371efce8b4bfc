package mp4container

import (
	"bytes"
	"testing"

	"github.com/user/framesampler/pkg/ports"
)

func TestLengthPrefixedToAnnexB(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"single", []byte{0, 0, 0, 2, 0x65, 0x88}, []byte{0, 0, 0, 1, 0x65, 0x88}},
		{"two units", []byte{0, 0, 0, 1, 0x09, 0, 0, 0, 2, 0x41, 0x9a}, []byte{0, 0, 0, 1, 0x09, 0, 0, 0, 1, 0x41, 0x9a}},
		{"truncated tail", []byte{0, 0, 0, 1, 0x09, 0, 0, 0, 9, 0x41}, []byte{0, 0, 0, 1, 0x09}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lengthPrefixedToAnnexB(nil, tt.in)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %x, want %x", got, tt.want)
			}
		})
	}
}

func TestCodecFromSampleEntry(t *testing.T) {
	tests := map[string]ports.CodecID{
		"avc1": ports.CodecH264,
		"avc3": ports.CodecH264,
		"hvc1": ports.CodecHEVC,
		"hev1": ports.CodecHEVC,
		"av01": ports.CodecAV1,
		"vp09": ports.CodecVP9,
		"mp4a": ports.CodecAAC,
		"xxxx": ports.CodecUnknown,
	}
	for fourCC, want := range tests {
		if got := codecFromSampleEntry(fourCC); got != want {
			t.Errorf("%s: expected %s, got %s", fourCC, want, got)
		}
	}
}

func TestMediaTypeFromHandler(t *testing.T) {
	if mediaTypeFromHandler("vide") != ports.MediaTypeVideo {
		t.Error("vide should be video")
	}
	if mediaTypeFromHandler("soun") != ports.MediaTypeAudio {
		t.Error("soun should be audio")
	}
	if mediaTypeFromHandler("meta") != ports.MediaTypeData {
		t.Error("meta should be data")
	}
}
