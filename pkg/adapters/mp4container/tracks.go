package mp4container

import (
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/framesampler/pkg/ports"
)

// track is the reader's view of one trak box.
type track struct {
	desc      ports.StreamDescriptor
	id        uint32
	timescale uint32
	trex      *mp4.TrexBox

	// lengthPrefixed is set for AVC and HEVC, whose samples are rewritten to
	// Annex B with paramSets prepended on sync samples.
	lengthPrefixed bool
	paramSets      []byte
}

func mediaTypeFromHandler(handler string) ports.MediaType {
	switch handler {
	case "vide":
		return ports.MediaTypeVideo
	case "soun":
		return ports.MediaTypeAudio
	case "text", "sbtl", "subt", "clcp":
		return ports.MediaTypeSubtitle
	case "":
		return ports.MediaTypeUnknown
	default:
		return ports.MediaTypeData
	}
}

// codecFromSampleEntry maps a sample entry 4CC to a codec id.
func codecFromSampleEntry(fourCC string) ports.CodecID {
	switch fourCC {
	case "avc1", "avc3":
		return ports.CodecH264
	case "hvc1", "hev1":
		return ports.CodecHEVC
	case "av01":
		return ports.CodecAV1
	case "vp08":
		return ports.CodecVP8
	case "vp09":
		return ports.CodecVP9
	case "mp4v":
		return ports.CodecMPEG4
	case "jpeg", "mjpa", "mjpb":
		return ports.CodecMJPEG
	case "mp4a":
		return ports.CodecAAC
	case "Opus", "opus":
		return ports.CodecOpus
	case ".mp3":
		return ports.CodecMP3
	default:
		return ports.CodecUnknown
	}
}

// newTrack builds the descriptor of trak at container position index.
func newTrack(index int, trak *mp4.TrakBox) *track {
	t := &track{
		desc:      ports.StreamDescriptor{Index: index},
		timescale: 1000,
	}
	if trak.Tkhd != nil {
		t.id = trak.Tkhd.TrackID
	}
	if trak.Mdia == nil {
		return t
	}
	if trak.Mdia.Hdlr != nil {
		t.desc.MediaType = mediaTypeFromHandler(trak.Mdia.Hdlr.HandlerType)
	}
	if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale != 0 {
		t.timescale = trak.Mdia.Mdhd.Timescale
	}
	t.desc.TimeBase = ports.Rational{Num: 1, Den: int(t.timescale)}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return t
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		codec := codecFromSampleEntry(child.Type())
		if codec == ports.CodecUnknown {
			continue
		}
		t.desc.Codec = codec
		t.desc.CodecTag = child.Type()

		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			t.desc.Width = int(vse.Width)
			t.desc.Height = int(vse.Height)
			switch {
			case vse.AvcC != nil:
				t.lengthPrefixed = true
				t.paramSets = annexBParamSets(vse.AvcC.SPSnalus, vse.AvcC.PPSnalus)
			case vse.HvcC != nil:
				t.lengthPrefixed = true
				var sets [][]byte
				for _, arr := range vse.HvcC.NaluArrays {
					sets = append(sets, arr.Nalus...)
				}
				t.paramSets = annexBParamSets(sets)
			}
			t.desc.Extradata = t.paramSets
		}
		break
	}

	if t.desc.Width == 0 && trak.Tkhd != nil {
		t.desc.Width = int(trak.Tkhd.Width >> 16)
		t.desc.Height = int(trak.Tkhd.Height >> 16)
	}
	return t
}

// estimateBitRate derives an average bit rate from the sample table.
func estimateBitRate(trak *mp4.TrakBox) int64 {
	if trak.Mdia == nil || trak.Mdia.Mdhd == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return 0
	}
	stsz := trak.Mdia.Minf.Stbl.Stsz
	mdhd := trak.Mdia.Mdhd
	if stsz == nil || mdhd.Duration == 0 || mdhd.Timescale == 0 {
		return 0
	}
	var total uint64
	for nr := 1; nr <= int(stsz.SampleNumber); nr++ {
		total += uint64(stsz.GetSampleSize(nr))
	}
	bits, ts := total*8, uint64(mdhd.Timescale)
	return int64(bits/mdhd.Duration*ts + bits%mdhd.Duration*ts/mdhd.Duration)
}

// mediaDuration converts units of timescale into a Duration without
// overflowing for long or finely timed media.
func mediaDuration(units uint64, timescale uint32) time.Duration {
	if timescale == 0 {
		return 0
	}
	ts := uint64(timescale)
	return time.Duration(units/ts)*time.Second + time.Duration(units%ts)*time.Second/time.Duration(ts)
}
