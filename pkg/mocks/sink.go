package mocks

import (
	"fmt"
	"image"
	"time"

	"github.com/user/framesampler/pkg/ports"
)

// FrameSink records saved frames.
type FrameSink struct {
	Disabled bool
	SaveErr  error

	// Saved holds frame numbers in call order.
	Saved       []int
	Predictions [][]ports.Prediction
}

func (m *FrameSink) Enabled() bool {
	return !m.Disabled
}

func (m *FrameSink) SaveFrame(number int, img image.Image, predictions []ports.Prediction) (string, error) {
	m.Saved = append(m.Saved, number)
	m.Predictions = append(m.Predictions, predictions)
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	return fmt.Sprintf("frame%d.jpg", number), nil
}

var _ ports.FrameSink = (*FrameSink)(nil)

// Observer counts RunObserver events.
type Observer struct {
	Packets      int
	VideoPackets int
	Decoded      int
	ConvFailures int
	Inferences   int
	InferErrors  int
	Finished     []ports.Termination
}

func (m *Observer) PacketRead(video bool) {
	m.Packets++
	if video {
		m.VideoPackets++
	}
}

func (m *Observer) FrameDecoded()     { m.Decoded++ }
func (m *Observer) ConversionFailed() { m.ConvFailures++ }

func (m *Observer) InferenceDone(d time.Duration, err error) {
	m.Inferences++
	if err != nil {
		m.InferErrors++
	}
}

func (m *Observer) RunFinished(t ports.Termination) {
	m.Finished = append(m.Finished, t)
}

var _ ports.RunObserver = (*Observer)(nil)
