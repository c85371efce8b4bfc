//go:build cgo

package ffmpeg

import (
	"sort"

	"github.com/asticode/go-astiav"
	"github.com/user/framesampler/pkg/ports"
	"github.com/user/framesampler/pkg/registry"
)

// Provider returns a registry.Provider that registers a session factory for
// every known video codec libavcodec has a decoder for.
func Provider(logger ports.Logger) registry.Provider {
	log := logger.WithComponent("ffmpeg")
	return func(r *registry.Registry) error {
		codecs := make([]ports.CodecID, 0, len(codecIDs))
		for c := range codecIDs {
			codecs = append(codecs, c)
		}
		sort.Slice(codecs, func(i, j int) bool { return codecs[i] < codecs[j] })

		for _, c := range codecs {
			id := codecIDs[c]
			if id.MediaType() != astiav.MediaTypeVideo {
				continue
			}
			dec := astiav.FindDecoder(id)
			if dec == nil {
				log.Debug("No decoder for %s", c)
				continue
			}
			codec := c
			err := r.Register(codec, registry.Factory{
				Backend:    Backend,
				NewSession: func() ports.DecoderSession { return NewSession(logger) },
			})
			if err != nil {
				return err
			}
			log.Debug("Registered decoder %s for %s", dec.Name(), codec)
		}
		return nil
	}
}
