//go:build cgo

package onnxmodel

import (
	"testing"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/user/framesampler/pkg/adapters/logger"
)

func TestInputSize(t *testing.T) {
	tests := []struct {
		name    string
		dims    ort.Shape
		w, h    int
		wantW   int
		wantH   int
		wantErr bool
	}{
		{"static", ort.NewShape(1, 96, 128, 3), 0, 0, 128, 96, false},
		{"dynamic uses config", ort.NewShape(-1, -1, -1, 3), 96, 96, 96, 96, false},
		{"nchw rejected", ort.NewShape(1, 3, 96, 96), 96, 96, 0, 0, true},
		{"rank 2 rejected", ort.NewShape(1, 10), 96, 96, 0, 0, true},
		{"no size", ort.NewShape(1, -1, -1, 3), 0, 0, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := inputSize(tt.dims, tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (w != tt.wantW || h != tt.wantH) {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestOutputSize(t *testing.T) {
	if got := outputSize(ort.NewShape(-1, 2)); got != 2 {
		t.Errorf("expected dynamic batch ignored, got %d", got)
	}
	if got := outputSize(ort.NewShape(1, -1)); got != -1 {
		t.Errorf("expected -1 for dynamic classes, got %d", got)
	}
}

func TestLoad_MissingModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = t.TempDir() + "/missing.onnx"

	if _, err := Load(cfg, logger.NewNoop()); err == nil {
		t.Error("expected error for missing model")
	}
}
