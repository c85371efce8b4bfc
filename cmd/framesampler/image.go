package main

import (
	"context"
	"fmt"
	"io"

	"github.com/user/framesampler/pkg/adapters/filesink"
	"github.com/user/framesampler/pkg/adapters/ggrenderer"
	"github.com/user/framesampler/pkg/adapters/osfilesystem"
	"github.com/user/framesampler/pkg/ports"
)

// classifyImage runs the model once on a JPEG file and prints every
// prediction as "label (index): score".
func classifyImage(ctx context.Context, path string, model ports.Inferencer, out io.Writer, log ports.Logger) error {
	if !model.Ready() {
		return ports.ErrModelNotReady
	}

	data, err := osfilesystem.New().ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	img, err := ggrenderer.New().DecodeImage(data, ports.FormatJPEG)
	if err != nil {
		return fmt.Errorf("decode image %s: %w", path, err)
	}
	log.Debug("Decoded %s: %dx%d", path, img.Bounds().Dx(), img.Bounds().Dy())

	preds, err := model.Infer(ctx, ports.ToRGBImage(img))
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrInference, err)
	}

	for _, line := range filesink.Lines(preds, 0) {
		fmt.Fprintln(out, line)
	}
	return nil
}
