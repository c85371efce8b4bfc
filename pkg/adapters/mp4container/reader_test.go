package mp4container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/framesampler/pkg/adapters/logger"
	"github.com/user/framesampler/pkg/mocks"
	"github.com/user/framesampler/pkg/ports"
)

func TestReader_Streams(t *testing.T) {
	data := buildFragmentedMP4(t, 1, 3, 2)

	r, err := NewReader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	info := r.Info()
	if info.FormatName != "mp4 (fragmented)" {
		t.Errorf("expected fragmented format name, got %q", info.FormatName)
	}
	if len(info.Streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(info.Streams))
	}

	video := info.Streams[0]
	if video.Index != 0 || !video.IsVideo() || video.Codec != ports.CodecH264 {
		t.Errorf("unexpected video stream: %+v", video)
	}
	if video.Width != 320 || video.Height != 240 {
		t.Errorf("expected 320x240, got %dx%d", video.Width, video.Height)
	}
	if video.CodecTag != "avc1" {
		t.Errorf("expected avc1 tag, got %q", video.CodecTag)
	}
	if video.TimeBase.Den != 90000 {
		t.Errorf("expected 90 kHz time base, got %d", video.TimeBase.Den)
	}

	audio := info.Streams[1]
	if audio.Index != 1 || audio.MediaType != ports.MediaTypeAudio || audio.Codec != ports.CodecAAC {
		t.Errorf("unexpected audio stream: %+v", audio)
	}
}

func TestReader_PacketOrder(t *testing.T) {
	data := buildFragmentedMP4(t, 2, 3, 2)

	r, err := NewReader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	var order []int
	for {
		pkt, err := r.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("NextPacket failed: %v", err)
		}
		order = append(order, pkt.StreamIndex)
		pkt.Release()
	}

	want := []int{0, 0, 0, 1, 1, 0, 0, 0, 1, 1}
	if len(order) != len(want) {
		t.Fatalf("expected %d packets, got %d: %v", len(want), len(order), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("packet %d: expected stream %d, got %d", i, want[i], order[i])
		}
	}
}

func TestReader_AnnexBWithParameterSets(t *testing.T) {
	data := buildFragmentedMP4(t, 1, 2, 0)

	r, err := NewReader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	key, err := r.NextPacket()
	if err != nil {
		t.Fatalf("NextPacket failed: %v", err)
	}
	var want []byte
	want = append(want, 0, 0, 0, 1)
	want = append(want, testSPS...)
	want = append(want, 0, 0, 0, 1)
	want = append(want, testPPS...)
	want = append(want, 0, 0, 0, 1, 0x65, 0x88)
	if !key.KeyFrame {
		t.Error("expected first packet to be a key frame")
	}
	if !bytes.Equal(key.Data, want) {
		t.Errorf("key packet:\n got %x\nwant %x", key.Data, want)
	}
	key.Release()

	inter, err := r.NextPacket()
	if err != nil {
		t.Fatalf("NextPacket failed: %v", err)
	}
	if inter.KeyFrame {
		t.Error("expected second packet to be a non-key frame")
	}
	if !bytes.Equal(inter.Data, []byte{0, 0, 0, 1, 0x41, 0x9a}) {
		t.Errorf("inter packet: got %x", inter.Data)
	}
	if inter.PTS != videoDur {
		t.Errorf("expected pts %d, got %d", videoDur, inter.PTS)
	}
	inter.Release()
	if inter.Data != nil {
		t.Error("expected Release to drop the payload")
	}
}

func TestReader_CloseTwice(t *testing.T) {
	data := buildFragmentedMP4(t, 1, 1, 0)

	r, err := NewReader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if _, err := r.NextPacket(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestReader_NoMoov(t *testing.T) {
	data := []byte{0, 0, 0, 8, 'f', 'r', 'e', 'e'}

	_, err := NewReader(bytes.NewReader(data), nil)
	if !errors.Is(err, ports.ErrContainerOpen) || !errors.Is(err, ports.ErrCorruptHeader) {
		t.Fatalf("expected corrupt header open failure, got %v", err)
	}
}

func TestOpener_NotFound(t *testing.T) {
	o := New(logger.NewNoop())

	_, err := o.Open(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, ports.ErrContainerOpen) {
		t.Fatalf("expected ErrContainerOpen, got %v", err)
	}
	if !errors.Is(err, ports.ErrContainerNotFound) {
		t.Errorf("expected ErrContainerNotFound, got %v", err)
	}
}

func TestOpener_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, buildFragmentedMP4(t, 1, 3, 1), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	o := New(logger.NewNoop())
	r, err := o.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		pkt, err := r.NextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPacket failed: %v", err)
		}
		count++
		pkt.Release()
	}
	if count != 4 {
		t.Errorf("expected 4 packets, got %d", count)
	}
}

func TestReader_SyncFlagsWithDependencyBits(t *testing.T) {
	// sample_depends_on=2 with sample_is_depended_on=1, as muxers commonly write for IDR frames.
	data := buildFragmentedMP4WithSyncFlags(t, 2, 2, 0x02400000)

	r, err := NewReader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	prefix := []byte{0, 0, 0, 1}
	prefix = append(prefix, testSPS...)
	wantKeys := []bool{true, false, true, false}
	for i, wantKey := range wantKeys {
		pkt, err := r.NextPacket()
		if err != nil {
			t.Fatalf("packet %d: NextPacket failed: %v", i, err)
		}
		if pkt.KeyFrame != wantKey {
			t.Errorf("packet %d: expected key frame %v, got %v", i, wantKey, pkt.KeyFrame)
		}
		if got := bytes.HasPrefix(pkt.Data, prefix); got != wantKey {
			t.Errorf("packet %d: expected parameter sets prepended %v, got %x", i, wantKey, pkt.Data)
		}
		pkt.Release()
	}
}

func TestReader_Progressive(t *testing.T) {
	data := buildProgressiveMP4(t, 2, 2, 1)

	r, err := NewReader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	info := r.Info()
	if info.FormatName != "mp4" {
		t.Errorf("expected progressive format name, got %q", info.FormatName)
	}
	if len(info.Streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(info.Streams))
	}
	if info.Streams[0].Codec != ports.CodecH264 || info.Streams[1].Codec != ports.CodecAAC {
		t.Errorf("unexpected codecs %s, %s", info.Streams[0].Codec, info.Streams[1].Codec)
	}
	if info.Streams[0].BitRate <= 0 {
		t.Errorf("expected an estimated video bit rate, got %d", info.Streams[0].BitRate)
	}
	if want := time.Duration(4*videoDur) * time.Second / 90000; info.Duration != want {
		t.Errorf("expected duration %s, got %s", want, info.Duration)
	}

	type packet struct {
		stream int
		key    bool
		pts    int64
	}
	offset := int64(mocks.FixtureCompositionOffset)
	want := []packet{
		{0, true, offset},
		{0, false, videoDur + offset},
		{1, true, 0},
		{0, true, 2*videoDur + offset},
		{0, false, 3*videoDur + offset},
		{1, true, mocks.FixtureAudioDuration},
	}

	var got []packet
	for {
		pkt, err := r.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("NextPacket failed: %v", err)
		}
		if pkt.StreamIndex == 0 && pkt.KeyFrame {
			var annexB []byte
			annexB = append(annexB, 0, 0, 0, 1)
			annexB = append(annexB, testSPS...)
			annexB = append(annexB, 0, 0, 0, 1)
			annexB = append(annexB, testPPS...)
			annexB = append(annexB, 0, 0, 0, 1, 0x65, 0x88)
			if !bytes.Equal(pkt.Data, annexB) {
				t.Errorf("key packet %d:\n got %x\nwant %x", len(got), pkt.Data, annexB)
			}
		}
		got = append(got, packet{pkt.StreamIndex, pkt.KeyFrame, pkt.PTS})
		pkt.Release()
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d packets, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("packet %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestReader_ProgressiveVideoOnly(t *testing.T) {
	data := buildProgressiveMP4(t, 3, 1, 0)

	r, err := NewReader(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		pkt, err := r.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("NextPacket failed: %v", err)
		}
		if pkt.StreamIndex != 0 || !pkt.KeyFrame {
			t.Errorf("packet %d: expected video key frame, got stream %d key %v", count, pkt.StreamIndex, pkt.KeyFrame)
		}
		count++
		pkt.Release()
	}
	if count != 3 {
		t.Errorf("expected 3 packets, got %d", count)
	}
}

func TestMediaDuration(t *testing.T) {
	tests := []struct {
		name      string
		units     uint64
		timescale uint32
		want      time.Duration
	}{
		{"zero timescale", 1000, 0, 0},
		{"one second", 90000, 90000, time.Second},
		{"fraction", 45000, 90000, 500 * time.Millisecond},
		{"ten hours at 90 kHz", 10 * 3600 * 90000, 90000, 10 * time.Hour},
		{"day at 1 MHz", 24 * 3600 * 1000000, 1000000, 24 * time.Hour},
		{"remainder", 3*48000 + 12000, 48000, 3*time.Second + 250*time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mediaDuration(tt.units, tt.timescale); got != tt.want {
				t.Errorf("mediaDuration(%d, %d) = %s, want %s", tt.units, tt.timescale, got, tt.want)
			}
		})
	}
}
