package ports

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"
)

func TestPlaneLayout(t *testing.T) {
	tests := []struct {
		format  PixelFormat
		w, h    int
		strides []int
		size    int
	}{
		{PixelFormatYUV420P, 4, 4, []int{4, 2, 2}, 24},
		{PixelFormatYUV420P, 5, 3, []int{5, 3, 3}, 27},
		{PixelFormatYUV422P, 4, 2, []int{4, 2, 2}, 16},
		{PixelFormatYUV444P, 2, 2, []int{2, 2, 2}, 12},
		{PixelFormatNV12, 4, 4, []int{4, 4}, 24},
		{PixelFormatGray, 3, 3, []int{3}, 9},
		{PixelFormatRGB24, 2, 2, []int{6}, 12},
		{PixelFormatBGRA, 2, 2, []int{8}, 16},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%dx%d", tt.format, tt.w, tt.h), func(t *testing.T) {
			layout, ok := PlaneLayout(tt.format, tt.w, tt.h)
			if !ok {
				t.Fatal("expected known layout")
			}
			if fmt.Sprint(layout.Strides) != fmt.Sprint(tt.strides) {
				t.Errorf("expected strides %v, got %v", tt.strides, layout.Strides)
			}
			if layout.Size() != tt.size {
				t.Errorf("expected size %d, got %d", tt.size, layout.Size())
			}
		})
	}

	if _, ok := PlaneLayout("p010le", 4, 4); ok {
		t.Error("expected unknown format to have no layout")
	}
	if _, ok := PlaneLayout(PixelFormatYUV420P, 0, 4); ok {
		t.Error("expected zero width to have no layout")
	}
}

func TestNewFrame_SlicesPlanes(t *testing.T) {
	data := make([]byte, 24)
	for i := range data {
		data[i] = byte(i)
	}
	f := NewFrame(4, 4, PixelFormatYUV420P, data, nil)

	if len(f.Planes) != 3 {
		t.Fatalf("expected 3 planes, got %d", len(f.Planes))
	}
	if len(f.Planes[0]) != 16 || len(f.Planes[1]) != 4 || len(f.Planes[2]) != 4 {
		t.Errorf("unexpected plane sizes %d %d %d", len(f.Planes[0]), len(f.Planes[1]), len(f.Planes[2]))
	}
	if f.Planes[1][0] != 16 || f.Planes[2][0] != 20 {
		t.Errorf("chroma planes start at wrong offsets")
	}
}

func TestNewFrame_ShortBufferHasNoPlanes(t *testing.T) {
	f := NewFrame(4, 4, PixelFormatYUV420P, make([]byte, 10), nil)
	if f.Planes != nil {
		t.Errorf("expected no planes for short buffer, got %d", len(f.Planes))
	}
}

func TestRelease_Idempotent(t *testing.T) {
	var frames, packets int
	f := NewFrame(2, 2, PixelFormatGray, make([]byte, 4), func() { frames++ })
	p := NewPacket(0, []byte{1}, 0, true, func() { packets++ })

	f.Release()
	f.Release()
	p.Release()
	p.Release()

	if frames != 1 || packets != 1 {
		t.Errorf("expected one release each, got frame=%d packet=%d", frames, packets)
	}
	if f.Data != nil || p.Data != nil {
		t.Error("expected buffers dropped after release")
	}

	var nilFrame *Frame
	var nilPacket *Packet
	nilFrame.Release()
	nilPacket.Release()
}

func TestUnrecoverable(t *testing.T) {
	base := fmt.Errorf("%w: session lost", ErrInference)
	err := Unrecoverable(base)

	if !IsUnrecoverable(err) {
		t.Error("expected unrecoverable")
	}
	if !errors.Is(err, ErrInference) {
		t.Error("expected wrapped error to stay matchable")
	}
	if err.Error() != base.Error() {
		t.Errorf("expected message %q, got %q", base.Error(), err.Error())
	}
	if IsUnrecoverable(base) {
		t.Error("plain error must not be unrecoverable")
	}
	if Unrecoverable(nil) != nil {
		t.Error("expected nil for nil error")
	}
	if !IsUnrecoverable(fmt.Errorf("infer: %w", err)) {
		t.Error("expected marker to survive wrapping")
	}
}

func TestToRGBImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(1, 1, 3, 2))
	src.Set(1, 1, color.RGBA{10, 20, 30, 255})
	src.Set(2, 1, color.RGBA{40, 50, 60, 255})

	img := ToRGBImage(src)
	if img.Width != 2 || img.Height != 1 || img.Stride != 6 || img.Format != PixelFormatRGB24 {
		t.Fatalf("unexpected geometry %+v", img)
	}
	want := []byte{10, 20, 30, 40, 50, 60}
	if string(img.Pix) != string(want) {
		t.Errorf("expected %v, got %v", want, img.Pix)
	}
	if c := img.At(1, 0).(color.RGBA); c != (color.RGBA{40, 50, 60, 255}) {
		t.Errorf("unexpected pixel %v", c)
	}
	if c := img.At(5, 5).(color.RGBA); c != (color.RGBA{}) {
		t.Errorf("expected zero color out of bounds, got %v", c)
	}
}

func TestStringers(t *testing.T) {
	if MediaTypeVideo.String() != "video" || MediaType(99).String() != "unknown" {
		t.Error("unexpected media type names")
	}
	if CodecUnknown.String() != "unknown" || CodecH264.String() != "h264" {
		t.Error("unexpected codec names")
	}
	if SessionOpened.String() != "opened" || StatusEndOfStream.String() != "end-of-stream" {
		t.Error("unexpected state names")
	}
}
