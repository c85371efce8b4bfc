package filesink

import (
	"errors"
	"image"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/user/framesampler/pkg/mocks"
	"github.com/user/framesampler/pkg/ports"
)

var testDir = filepath.Join("out")

var preds = []ports.Prediction{
	{ClassID: 2, Label: "person", Score: 0.75},
	{ClassID: 0, Label: "background", Score: 0.2},
	{ClassID: 1, Label: "cat", Score: 0.05},
}

func TestSink_Enabled(t *testing.T) {
	sink := New(testDir, mocks.NewFileSystem(), &mocks.Renderer{}, DefaultOptions())
	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{3, "frame3.jpg"},
		{12, "frame12.jpg"},
		{300, "frame300.jpg"},
	}
	for _, tt := range tests {
		if got := FileName(tt.n); got != tt.want {
			t.Errorf("FileName(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestSink_SaveFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{}
	sink := New(testDir, fs, renderer, DefaultOptions())

	path, err := sink.SaveFrame(6, image.NewRGBA(image.Rect(0, 0, 4, 4)), preds)
	if err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}

	want := filepath.Join(testDir, "frame6.jpg")
	if path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
	if _, err := fs.ReadFile(want); err != nil {
		t.Errorf("expected file at %s: %v", want, err)
	}
	if ok, _ := fs.Exists(testDir); !ok {
		t.Error("expected output directory created")
	}
	if len(renderer.AnnotateCalls) != 0 {
		t.Error("expected no annotation by default")
	}
}

func TestSink_SaveFrameWithoutPredictions(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{}
	sink := New(testDir, fs, renderer, Options{Annotate: true})

	if _, err := sink.SaveFrame(3, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}
	if len(renderer.AnnotateCalls) != 0 {
		t.Error("expected no annotation without predictions")
	}
	if !reflect.DeepEqual(fs.Paths(), []string{filepath.Join(testDir, "frame3.jpg")}) {
		t.Errorf("unexpected files %v", fs.Paths())
	}
}

func TestSink_Annotate(t *testing.T) {
	renderer := &mocks.Renderer{}
	sink := New(testDir, mocks.NewFileSystem(), renderer, Options{Annotate: true, TopN: 2})

	if _, err := sink.SaveFrame(9, image.NewRGBA(image.Rect(0, 0, 4, 4)), preds); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}

	want := [][]string{{"person (2): 0.7500", "background (0): 0.2000"}}
	if !reflect.DeepEqual(renderer.AnnotateCalls, want) {
		t.Errorf("expected %v, got %v", want, renderer.AnnotateCalls)
	}
}

func TestSink_EncodeError(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return nil, errors.New("encode failed")
		},
	}
	sink := New(testDir, fs, renderer, DefaultOptions())

	if _, err := sink.SaveFrame(3, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err == nil {
		t.Fatal("expected error")
	}
	if len(fs.Paths()) != 0 {
		t.Errorf("expected no files written, got %v", fs.Paths())
	}
}

func TestSink_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteErr = errors.New("disk full")
	sink := New(testDir, fs, &mocks.Renderer{}, DefaultOptions())

	_, err := sink.SaveFrame(3, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil)
	if !errors.Is(err, fs.WriteErr) {
		t.Errorf("expected write error, got %v", err)
	}
}

func TestSink_QualityPassedToEncoder(t *testing.T) {
	var got int
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			got = quality
			return []byte{0}, nil
		},
	}
	sink := New(testDir, mocks.NewFileSystem(), renderer, Options{Quality: 0})

	if _, err := sink.SaveFrame(3, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}
	if got != DefaultOptions().Quality {
		t.Errorf("expected default quality %d, got %d", DefaultOptions().Quality, got)
	}
}

func TestLines(t *testing.T) {
	if got := Lines(preds, 0); len(got) != 3 {
		t.Errorf("expected all 3 lines, got %v", got)
	}
	if got := Lines(preds, 1); !reflect.DeepEqual(got, []string{"person (2): 0.7500"}) {
		t.Errorf("unexpected lines %v", got)
	}
	if got := Lines(nil, 5); len(got) != 0 {
		t.Errorf("expected no lines, got %v", got)
	}
}
