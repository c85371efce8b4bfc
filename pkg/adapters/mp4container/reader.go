// Package mp4container reads MP4 and MOV files with mp4ff and exposes their
// tracks as elementary streams.
package mp4container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/framesampler/pkg/ports"
)

// ErrClosed is returned by NextPacket after Close.
var ErrClosed = errors.New("mp4container: reader closed")

// sampleRef locates one sample. Progressive samples are read lazily at
// offset; fragmented samples already carry their payload.
type sampleRef struct {
	track  *track
	offset int64
	size   uint32
	data   []byte
	pts    int64
	key    bool
}

// Opener opens MP4 files from disk.
type Opener struct {
	logger ports.Logger
}

// New creates an Opener.
func New(logger ports.Logger) *Opener {
	return &Opener{logger: logger.WithComponent("mp4")}
}

// Open opens path and parses its header.
func (o *Opener) Open(ctx context.Context, path string) (ports.ContainerReader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w: %s", ports.ErrContainerOpen, ports.ErrContainerNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w: %v", ports.ErrContainerOpen, ports.ErrContainerUnreadable, err)
	}

	r, err := NewReader(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	o.logger.Debug("Opened %s: %d streams (%s)", path, len(r.info.Streams), r.info.FormatName)
	return r, nil
}

var _ ports.ContainerOpener = (*Opener)(nil)

// Reader implements ports.ContainerReader over an MP4 byte stream.
type Reader struct {
	rs     io.ReadSeeker
	closer io.Closer
	file   *mp4.File
	info   ports.ContainerInfo
	tracks []*track

	// Progressive files keep a flat, offset-ordered sample index.
	samples []sampleRef
	next    int

	// Fragmented files are walked one fragment at a time.
	segIdx  int
	fragIdx int
	pending []sampleRef

	pool   sync.Pool
	closed bool
}

// NewReader parses the MP4 header from rs. closer may be nil.
func NewReader(rs io.ReadSeeker, closer io.Closer) (*Reader, error) {
	file, err := mp4.DecodeFile(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ports.ErrContainerOpen, ports.ErrCorruptHeader, err)
	}

	r := &Reader{
		rs:     rs,
		closer: closer,
		file:   file,
		pool:   sync.Pool{New: func() any { b := make([]byte, 0, 64*1024); return &b }},
	}

	var moov *mp4.MoovBox
	if file.IsFragmented() && file.Init != nil {
		moov = file.Init.Moov
		r.info.FormatName = "mp4 (fragmented)"
	} else {
		moov = file.Moov
		r.info.FormatName = "mp4"
	}
	if moov == nil {
		return nil, fmt.Errorf("%w: %w: no moov box", ports.ErrContainerOpen, ports.ErrCorruptHeader)
	}

	if moov.Mvhd != nil && moov.Mvhd.Timescale != 0 {
		r.info.Duration = mediaDuration(moov.Mvhd.Duration, moov.Mvhd.Timescale)
	}

	for i, trak := range moov.Traks {
		t := newTrack(i, trak)
		if !file.IsFragmented() {
			t.desc.BitRate = estimateBitRate(trak)
		}
		if moov.Mvex != nil {
			for _, trex := range moov.Mvex.Trexs {
				if trex.TrackID == t.id {
					t.trex = trex
					break
				}
			}
		}
		r.tracks = append(r.tracks, t)
		r.info.Streams = append(r.info.Streams, t.desc)
	}

	if !file.IsFragmented() {
		if err := r.indexProgressive(moov); err != nil {
			return nil, fmt.Errorf("%w: %w: %v", ports.ErrContainerOpen, ports.ErrCorruptHeader, err)
		}
	}
	return r, nil
}

// Info returns the container metadata.
func (r *Reader) Info() ports.ContainerInfo {
	return r.info
}

// NextPacket returns the next sample of any track.
func (r *Reader) NextPacket() (*ports.Packet, error) {
	if r.closed {
		return nil, ErrClosed
	}

	var ref sampleRef
	if r.file.IsFragmented() {
		for len(r.pending) == 0 {
			more, err := r.loadFragment()
			if err != nil {
				return nil, err
			}
			if !more {
				return nil, io.EOF
			}
		}
		ref = r.pending[0]
		r.pending = r.pending[1:]
	} else {
		if r.next >= len(r.samples) {
			return nil, io.EOF
		}
		ref = r.samples[r.next]
		r.next++
	}

	raw := ref.data
	if raw == nil {
		var err error
		if raw, err = r.readAt(ref.offset, ref.size); err != nil {
			return nil, fmt.Errorf("read sample of stream %d: %w", ref.track.desc.Index, err)
		}
	}
	return r.packetize(ref, raw), nil
}

// Close releases the underlying file. Calling it twice is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.samples = nil
	r.pending = nil
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

var _ ports.ContainerReader = (*Reader)(nil)

// packetize copies raw into a pooled buffer, rewriting AVC/HEVC to Annex B.
func (r *Reader) packetize(ref sampleRef, raw []byte) *ports.Packet {
	bufp := r.pool.Get().(*[]byte)
	buf := (*bufp)[:0]

	t := ref.track
	if t.lengthPrefixed {
		if ref.key {
			buf = append(buf, t.paramSets...)
		}
		buf = lengthPrefixedToAnnexB(buf, raw)
	} else {
		buf = append(buf, raw...)
	}

	return ports.NewPacket(t.desc.Index, buf, ref.pts, ref.key, func() {
		*bufp = buf[:0]
		r.pool.Put(bufp)
	})
}

func (r *Reader) readAt(offset int64, size uint32) ([]byte, error) {
	if _, err := r.rs.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r.rs, data); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return data, nil
}

// indexProgressive builds the sample index of every track ordered by file offset.
func (r *Reader) indexProgressive(moov *mp4.MoovBox) error {
	for i, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
			continue
		}
		refs, err := trackSamples(r.tracks[i], trak.Mdia.Minf.Stbl)
		if err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
		r.samples = append(r.samples, refs...)
	}
	sort.SliceStable(r.samples, func(a, b int) bool {
		return r.samples[a].offset < r.samples[b].offset
	})
	return nil
}

func trackSamples(t *track, stbl *mp4.StblBox) ([]sampleRef, error) {
	if stbl.Stsz == nil || stbl.Stsc == nil {
		return nil, nil
	}
	if stbl.Stco == nil && stbl.Co64 == nil {
		return nil, errors.New("no stco or co64 box")
	}

	count := int(stbl.Stsz.SampleNumber)
	syncSamples := make(map[uint32]bool)
	if stbl.Stss != nil {
		for _, nr := range stbl.Stss.SampleNumber {
			syncSamples[nr] = true
		}
	}

	refs := make([]sampleRef, 0, count)
	var offset uint64
	prevChunk := -1
	for nr := 1; nr <= count; nr++ {
		chunkNr, _, err := stbl.Stsc.ChunkNrFromSampleNr(nr)
		if err != nil {
			return nil, fmt.Errorf("sample %d chunk: %w", nr, err)
		}
		if chunkNr != prevChunk {
			if offset, err = chunkOffset(stbl, chunkNr); err != nil {
				return nil, fmt.Errorf("sample %d: %w", nr, err)
			}
			prevChunk = chunkNr
		}
		size := stbl.Stsz.GetSampleSize(nr)

		var pts int64
		if stbl.Stts != nil {
			decodeTime, _ := stbl.Stts.GetDecodeTime(uint32(nr))
			pts = int64(decodeTime)
		}
		if stbl.Ctts != nil {
			pts += int64(stbl.Ctts.GetCompositionTimeOffset(uint32(nr)))
		}

		refs = append(refs, sampleRef{
			track:  t,
			offset: int64(offset),
			size:   size,
			pts:    pts,
			key:    stbl.Stss == nil || syncSamples[uint32(nr)],
		})
		offset += uint64(size)
	}
	return refs, nil
}

func chunkOffset(stbl *mp4.StblBox, chunkNr int) (uint64, error) {
	if stbl.Stco != nil {
		return stbl.Stco.GetOffset(chunkNr)
	}
	if chunkNr < 1 || chunkNr > len(stbl.Co64.ChunkOffset) {
		return 0, fmt.Errorf("chunk %d out of range", chunkNr)
	}
	return stbl.Co64.ChunkOffset[chunkNr-1], nil
}

// loadFragment queues the samples of the next fragment in traf order.
func (r *Reader) loadFragment() (bool, error) {
	for r.segIdx < len(r.file.Segments) {
		seg := r.file.Segments[r.segIdx]
		if r.fragIdx >= len(seg.Fragments) {
			r.segIdx++
			r.fragIdx = 0
			continue
		}
		frag := seg.Fragments[r.fragIdx]
		r.fragIdx++
		if frag.Moof == nil {
			continue
		}

		for _, traf := range frag.Moof.Trafs {
			t := r.trackByID(traf.Tfhd.TrackID)
			if t == nil {
				continue
			}
			samples, err := frag.GetFullSamples(t.trex)
			if err != nil {
				return false, fmt.Errorf("%w: fragment samples: %v", ports.ErrContainerUnreadable, err)
			}
			for _, s := range samples {
				r.pending = append(r.pending, sampleRef{
					track: t,
					data:  s.Data,
					size:  uint32(len(s.Data)),
					pts:   int64(s.DecodeTime) + int64(s.CompositionTimeOffset),
					key:   mp4.IsSyncSampleFlags(s.Flags),
				})
			}
		}
		return true, nil
	}
	return false, nil
}

func (r *Reader) trackByID(id uint32) *track {
	for _, t := range r.tracks {
		if t.id == id {
			return t
		}
	}
	return nil
}
