package ports

import "time"

// Termination describes why a run stopped.
type Termination string

const (
	TerminationEndOfStream     Termination = "end_of_stream"
	TerminationBudgetExhausted Termination = "budget_exhausted"
	TerminationCanceled        Termination = "canceled"
	TerminationError           Termination = "error"
)

// RunObserver receives counters from the driver loop.
// Implementations must be safe for concurrent use by independent runs.
type RunObserver interface {
	PacketRead(video bool)
	FrameDecoded()
	ConversionFailed()
	InferenceDone(d time.Duration, err error)
	RunFinished(t Termination)
}

// NopObserver discards all observations.
type NopObserver struct{}

func (NopObserver) PacketRead(video bool)                    {}
func (NopObserver) FrameDecoded()                            {}
func (NopObserver) ConversionFailed()                        {}
func (NopObserver) InferenceDone(d time.Duration, err error) {}
func (NopObserver) RunFinished(t Termination)                {}

var _ RunObserver = NopObserver{}
