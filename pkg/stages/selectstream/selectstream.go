// Package selectstream implements the stream selection stage.
package selectstream

import (
	"context"
	"fmt"

	"github.com/user/framesampler/pkg/pipeline"
	"github.com/user/framesampler/pkg/ports"
	"github.com/user/framesampler/pkg/registry"
)

// Resolver looks up decoder factories by codec.
type Resolver interface {
	Lookup(codec ports.CodecID) (registry.Factory, bool)
}

// Stage picks the first video stream and resolves its decoder.
type Stage struct {
	decoders Resolver
	logger   ports.Logger
}

// New creates a new selection stage.
func New(decoders Resolver, logger ports.Logger) *Stage {
	return &Stage{
		decoders: decoders,
		logger:   logger.WithComponent("select"),
	}
}

// Execute selects the video stream from streams in container order.
// Streams without a decoder are reported in Selection.Unsupported; only a
// missing video stream or an undecodable first video stream fails.
func (s *Stage) Execute(ctx context.Context, streams []ports.StreamDescriptor) (pipeline.Selection, error) {
	var sel pipeline.Selection
	found := false

	for _, st := range streams {
		factory, ok := s.decoders.Lookup(st.Codec)
		if !ok {
			sel.Unsupported = append(sel.Unsupported, st)
			s.logger.Warn("Stream %d (%s): no decoder for codec %s", st.Index, st.MediaType, st.Codec)
		}

		if !st.IsVideo() {
			continue
		}
		if found {
			s.logger.Debug("Ignoring additional video stream %d", st.Index)
			continue
		}
		found = true
		sel.Video = st
		if ok {
			sel.Factory = factory
		}
	}

	if !found {
		return sel, ports.ErrNoVideoStream
	}
	if sel.Factory.NewSession == nil {
		return sel, fmt.Errorf("%w: video stream %d uses %s", ports.ErrUnsupportedCodec, sel.Video.Index, sel.Video.Codec)
	}

	s.logger.Debug("Selected stream %d: %s %dx%d via %s", sel.Video.Index, sel.Video.Codec, sel.Video.Width, sel.Video.Height, sel.Factory.Backend)
	return sel, nil
}

var _ pipeline.Stage[[]ports.StreamDescriptor, pipeline.Selection] = (*Stage)(nil)
