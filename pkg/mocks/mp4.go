package mocks

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/aac"
	"github.com/Eyevinn/mp4ff/avc"
	"github.com/Eyevinn/mp4ff/mp4"
)

// Parameter sets and samples written by the MP4 fixtures.
// The samples are not decodable; they only carry the right NAL unit types.
var (
	FixtureSPS = []byte{0x67, 0x42, 0xc0, 0x1e, 0xda, 0x02, 0x80, 0xbf}
	FixturePPS = []byte{0x68, 0xce, 0x3c, 0x80}

	fixtureIDR   = []byte{0, 0, 0, 2, 0x65, 0x88}
	fixtureInter = []byte{0, 0, 0, 2, 0x41, 0x9a}
	fixtureAudio = []byte{0x21, 0x10, 0x04}
)

// Fixture track layout.
const (
	FixtureVideoTrackID  = 1
	FixtureAudioTrackID  = 2
	FixtureVideoDuration = 3000 // 30 fps at 90 kHz
	FixtureAudioDuration = 1024
	FixtureWidth         = 320
	FixtureHeight        = 240

	// FixtureCompositionOffset is the ctts offset of every progressive video sample.
	FixtureCompositionOffset = 6000
)

// FragmentedMP4 builds an fMP4 with one H.264 track and one AAC track.
// Each fragment holds videoPerFrag video samples (the first one a sync
// sample) followed by audioPerFrag audio samples.
func FragmentedMP4(fragments, videoPerFrag, audioPerFrag int) ([]byte, error) {
	return FragmentedMP4WithSyncFlags(fragments, videoPerFrag, audioPerFrag, mp4.SyncSampleFlags)
}

// FragmentedMP4WithSyncFlags is FragmentedMP4 with the trun flags of the
// sync samples set to syncFlags.
func FragmentedMP4WithSyncFlags(fragments, videoPerFrag, audioPerFrag int, syncFlags uint32) ([]byte, error) {
	seg := mp4.CreateEmptyInit()
	seg.AddEmptyTrack(90000, "video", "en")
	seg.AddEmptyTrack(48000, "audio", "en")
	if err := addSampleEntries(seg.Moov.Traks[0], seg.Moov.Traks[1]); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := encodeHeader(&buf, seg.Moov); err != nil {
		return nil, err
	}

	var videoTime, audioTime uint64
	for f := 0; f < fragments; f++ {
		frag, err := mp4.CreateMultiTrackFragment(uint32(f+1), []uint32{FixtureVideoTrackID, FixtureAudioTrackID})
		if err != nil {
			return nil, fmt.Errorf("create fragment: %w", err)
		}
		for i := 0; i < videoPerFrag; i++ {
			data, flags := fixtureInter, mp4.NonSyncSampleFlags
			if i == 0 {
				data, flags = fixtureIDR, syncFlags
			}
			err := frag.AddFullSampleToTrack(mp4.FullSample{
				Sample:     mp4.Sample{Flags: flags, Size: uint32(len(data)), Dur: FixtureVideoDuration},
				DecodeTime: videoTime,
				Data:       data,
			}, FixtureVideoTrackID)
			if err != nil {
				return nil, fmt.Errorf("add video sample: %w", err)
			}
			videoTime += FixtureVideoDuration
		}
		for i := 0; i < audioPerFrag; i++ {
			err := frag.AddFullSampleToTrack(mp4.FullSample{
				Sample:     mp4.Sample{Flags: mp4.SyncSampleFlags, Size: uint32(len(fixtureAudio)), Dur: FixtureAudioDuration},
				DecodeTime: audioTime,
				Data:       fixtureAudio,
			}, FixtureAudioTrackID)
			if err != nil {
				return nil, fmt.Errorf("add audio sample: %w", err)
			}
			audioTime += FixtureAudioDuration
		}
		if err := frag.Encode(&buf); err != nil {
			return nil, fmt.Errorf("encode fragment: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// ProgressiveMP4 builds a non-fragmented MP4 with the same two tracks.
// The mdat repeats chunks times one video chunk with videoPerChunk
// samples followed by one audio chunk with audioPerChunk samples. The
// first video sample of every chunk is listed in stss, and every video
// sample carries FixtureCompositionOffset in ctts.
func ProgressiveMP4(chunks, videoPerChunk, audioPerChunk int) ([]byte, error) {
	moov := mp4.NewMoovBox()
	mvhd := mp4.CreateMvhd()
	mvhd.Timescale = 90000
	mvhd.Duration = uint64(chunks * videoPerChunk * FixtureVideoDuration)
	mvhd.NextTrackID = 3
	moov.AddChild(mvhd)

	video := mp4.CreateEmptyTrak(FixtureVideoTrackID, 90000, "video", "en")
	audio := mp4.CreateEmptyTrak(FixtureAudioTrackID, 48000, "audio", "en")
	moov.AddChild(video)
	moov.AddChild(audio)
	if err := addSampleEntries(video, audio); err != nil {
		return nil, err
	}

	vstbl := video.Mdia.Minf.Stbl
	astbl := audio.Mdia.Minf.Stbl
	var stss mp4.StssBox
	var mdat []byte
	var videoChunkPos, audioChunkPos []int

	for c := 0; c < chunks; c++ {
		videoChunkPos = append(videoChunkPos, len(mdat))
		for i := 0; i < videoPerChunk; i++ {
			data := fixtureInter
			if i == 0 {
				data = fixtureIDR
				stss.SampleNumber = append(stss.SampleNumber, uint32(len(vstbl.Stsz.SampleSize)+1))
			}
			vstbl.Stsz.SampleSize = append(vstbl.Stsz.SampleSize, uint32(len(data)))
			mdat = append(mdat, data...)
		}
		if audioPerChunk == 0 {
			continue
		}
		audioChunkPos = append(audioChunkPos, len(mdat))
		for i := 0; i < audioPerChunk; i++ {
			astbl.Stsz.SampleSize = append(astbl.Stsz.SampleSize, uint32(len(fixtureAudio)))
			mdat = append(mdat, fixtureAudio...)
		}
	}

	videoSamples := uint32(len(vstbl.Stsz.SampleSize))
	if err := fillTimeToSample(vstbl, videoSamples, uint32(videoPerChunk), FixtureVideoDuration); err != nil {
		return nil, fmt.Errorf("video sample table: %w", err)
	}
	vstbl.AddChild(&stss)
	ctts := &mp4.CttsBox{}
	if err := ctts.AddSampleCountsAndOffset([]uint32{videoSamples}, []int32{FixtureCompositionOffset}); err != nil {
		return nil, fmt.Errorf("video ctts: %w", err)
	}
	vstbl.AddChild(ctts)
	video.Mdia.Mdhd.Duration = uint64(videoSamples) * FixtureVideoDuration

	audioSamples := uint32(len(astbl.Stsz.SampleSize))
	if audioSamples > 0 {
		if err := fillTimeToSample(astbl, audioSamples, uint32(audioPerChunk), FixtureAudioDuration); err != nil {
			return nil, fmt.Errorf("audio sample table: %w", err)
		}
		audio.Mdia.Mdhd.Duration = uint64(audioSamples) * FixtureAudioDuration
	}

	// Chunk offsets are absolute; the moov size only depends on the
	// number of offsets, so it is measured with placeholders first.
	vstbl.Stco.ChunkOffset = make([]uint32, len(videoChunkPos))
	astbl.Stco.ChunkOffset = make([]uint32, len(audioChunkPos))
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	payload := uint32(ftyp.Size() + moov.Size() + 8)
	for i, pos := range videoChunkPos {
		vstbl.Stco.ChunkOffset[i] = payload + uint32(pos)
	}
	for i, pos := range audioChunkPos {
		astbl.Stco.ChunkOffset[i] = payload + uint32(pos)
	}

	var buf bytes.Buffer
	if err := encodeHeader(&buf, moov); err != nil {
		return nil, err
	}
	box := &mp4.MdatBox{}
	box.SetData(mdat)
	if err := box.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode mdat: %w", err)
	}
	return buf.Bytes(), nil
}

func addSampleEntries(video, audio *mp4.TrakBox) error {
	avcC := &mp4.AvcCBox{DecConfRec: avc.DecConfRec{
		AVCProfileIndication: 66,
		ProfileCompatibility: 0xc0,
		AVCLevelIndication:   30,
		SPSnalus:             [][]byte{FixtureSPS},
		PPSnalus:             [][]byte{FixturePPS},
		NoTrailingInfo:       true,
	}}
	video.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("avc1", FixtureWidth, FixtureHeight, avcC))
	video.Tkhd.Width = mp4.Fixed32(FixtureWidth << 16)
	video.Tkhd.Height = mp4.Fixed32(FixtureHeight << 16)

	if err := audio.SetAACDescriptor(aac.AAClc, 48000); err != nil {
		return fmt.Errorf("set aac descriptor: %w", err)
	}
	return nil
}

// fillTimeToSample writes uniform stts, one stsc entry and the stsz count.
func fillTimeToSample(stbl *mp4.StblBox, samples, perChunk, dur uint32) error {
	stbl.Stts.SampleCount = []uint32{samples}
	stbl.Stts.SampleTimeDelta = []uint32{dur}
	stbl.Stsz.SampleNumber = samples
	return stbl.Stsc.AddEntry(1, perChunk, 1)
}

func encodeHeader(buf *bytes.Buffer, moov *mp4.MoovBox) error {
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(buf); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}
	if err := moov.Encode(buf); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}
	return nil
}
