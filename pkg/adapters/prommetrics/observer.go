// Package prommetrics exports driver loop counters to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/user/framesampler/pkg/ports"
)

const namespace = "framesampler"

// Observer implements ports.RunObserver on a private registry.
// It is safe for concurrent use by independent runs.
type Observer struct {
	registry *prometheus.Registry

	packets          *prometheus.CounterVec
	framesDecoded    prometheus.Counter
	conversionFailed prometheus.Counter
	inferences       *prometheus.CounterVec
	inferenceSeconds prometheus.Histogram
	runs             *prometheus.CounterVec
}

// New creates an Observer with its own registry.
func New() *Observer {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Observer{
		registry: reg,
		packets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_read_total",
			Help:      "Packets read from containers, by whether they belong to the selected video stream",
		}, []string{"stream"}),
		framesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_decoded_total",
			Help:      "Frames emitted by decoder sessions",
		}),
		conversionFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversion_failures_total",
			Help:      "Frames skipped because pixel conversion failed",
		}),
		inferences: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inferences_total",
			Help:      "Inference calls on sampled frames, by result",
		}, []string{"result"}),
		inferenceSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Latency of one inference call",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed runs, by termination",
		}, []string{"termination"}),
	}
}

// Registry returns the registry holding the framesampler metrics.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

func (o *Observer) PacketRead(video bool) {
	if video {
		o.packets.WithLabelValues("video").Inc()
	} else {
		o.packets.WithLabelValues("skipped").Inc()
	}
}

func (o *Observer) FrameDecoded() {
	o.framesDecoded.Inc()
}

func (o *Observer) ConversionFailed() {
	o.conversionFailed.Inc()
}

func (o *Observer) InferenceDone(d time.Duration, err error) {
	o.inferenceSeconds.Observe(d.Seconds())
	if err != nil {
		o.inferences.WithLabelValues("error").Inc()
		return
	}
	o.inferences.WithLabelValues("ok").Inc()
}

func (o *Observer) RunFinished(t ports.Termination) {
	o.runs.WithLabelValues(string(t)).Inc()
}

var _ ports.RunObserver = (*Observer)(nil)
