// Package filesink persists sampled frames as JPEG files.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/framesampler/pkg/ports"
)

// Options controls how frames are written.
type Options struct {
	Quality  int  // JPEG quality, 1-100
	Annotate bool // draw the top predictions onto the saved frame
	TopN     int  // predictions drawn when annotating
}

// DefaultOptions returns the default write options.
func DefaultOptions() Options {
	return Options{Quality: 90, TopN: 3}
}

// Sink writes frame<N>.jpg files into one directory.
type Sink struct {
	dir      string
	fs       ports.FileSystem
	renderer ports.Renderer
	opts     Options
	ready    bool
}

// New creates a new Sink writing into dir.
func New(dir string, fs ports.FileSystem, renderer ports.Renderer, opts Options) *Sink {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultOptions().Quality
	}
	return &Sink{
		dir:      dir,
		fs:       fs,
		renderer: renderer,
		opts:     opts,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// FileName returns the file name used for frame number n.
func FileName(n int) string {
	return fmt.Sprintf("frame%d.jpg", n)
}

// SaveFrame encodes img as JPEG and writes it as frame<number>.jpg.
func (s *Sink) SaveFrame(number int, img image.Image, predictions []ports.Prediction) (string, error) {
	if !s.ready {
		if err := s.fs.MkdirAll(s.dir); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		s.ready = true
	}

	if s.opts.Annotate && len(predictions) > 0 {
		img = s.renderer.Annotate(img, Lines(predictions, s.opts.TopN))
	}

	data, err := s.renderer.EncodeImage(img, ports.FormatJPEG, s.opts.Quality)
	if err != nil {
		return "", fmt.Errorf("encode frame %d: %w", number, err)
	}

	path := filepath.Join(s.dir, FileName(number))
	if err := s.fs.WriteFile(path, data); err != nil {
		return "", fmt.Errorf("write frame %d: %w", number, err)
	}
	return path, nil
}

// Lines formats up to n predictions as "label (index): score".
// n <= 0 formats all of them.
func Lines(predictions []ports.Prediction, n int) []string {
	if n <= 0 || n > len(predictions) {
		n = len(predictions)
	}
	lines := make([]string, 0, n)
	for _, p := range predictions[:n] {
		lines = append(lines, fmt.Sprintf("%s (%d): %.4f", p.Label, p.ClassID, p.Score))
	}
	return lines
}

var _ ports.FrameSink = (*Sink)(nil)
