package onnxmodel

import (
	"bufio"
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	if err := os.WriteFile(path, []byte("background\nperson\r\n\n\n"), 0644); err != nil {
		t.Fatal(err)
	}

	labels, err := LoadLabels(path)
	if err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}
	if want := []string{"background", "person"}; !reflect.DeepEqual(labels, want) {
		t.Errorf("expected %v, got %v", want, labels)
	}
}

func TestLoadLabels_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")

	_, err := LoadLabels(path)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("expected error to name %s, got %v", path, err)
	}
}

func TestParseLabels_KeepsInnerBlanks(t *testing.T) {
	got, err := ParseLabels([]byte("a\n\nc"))
	if err != nil {
		t.Fatalf("ParseLabels failed: %v", err)
	}
	if want := []string{"a", "", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParseLabels_LongLines(t *testing.T) {
	long := strings.Repeat("x", 100*1024)
	got, err := ParseLabels([]byte("a\n" + long + "\nc\n"))
	if err != nil {
		t.Fatalf("ParseLabels failed: %v", err)
	}
	if len(got) != 3 || got[1] != long {
		t.Errorf("expected the 100 KiB label intact, got %d labels", len(got))
	}

	_, err = ParseLabels([]byte("a\n" + strings.Repeat("x", 2*maxLabelLine)))
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("expected bufio.ErrTooLong, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected error to name line 2, got %v", err)
	}
}

func TestLoadLabels_TooLong(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 2*maxLabelLine)), 0644); err != nil {
		t.Fatal(err)
	}

	labels, err := LoadLabels(path)
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("expected bufio.ErrTooLong, got %v", err)
	}
	if labels != nil {
		t.Errorf("expected no labels on error, got %d", len(labels))
	}
}

func TestTopK(t *testing.T) {
	scores := []float32{0.1, 0.7, 0.05, 0.15}
	labels := []string{"a", "b", "c"}

	got := TopK(scores, labels, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(got))
	}
	if got[0].ClassID != 1 || got[0].Label != "b" || got[0].Score != 0.7 {
		t.Errorf("unexpected best prediction %+v", got[0])
	}
	if got[1].ClassID != 3 || got[1].Label != "class 3" {
		t.Errorf("expected unlabeled class 3 second, got %+v", got[1])
	}

	if all := TopK(scores, labels, 0); len(all) != 4 {
		t.Errorf("expected all 4 predictions, got %d", len(all))
	}
}

func TestTopK_TiesKeepIndexOrder(t *testing.T) {
	got := TopK([]float32{0.5, 0.5, 0.5}, nil, 0)
	for i, p := range got {
		if p.ClassID != i {
			t.Errorf("position %d: expected class %d, got %d", i, i, p.ClassID)
		}
	}
}

func TestPreprocess(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	dst := make([]float32, 4*4*3)
	if err := Preprocess(src, 4, 4, dst); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	for i := 0; i < len(dst); i += 3 {
		if dst[i] != 200 || dst[i+1] != 100 || dst[i+2] != 50 {
			t.Fatalf("pixel %d: got %v, want raw 0..255 values", i/3, dst[i:i+3])
		}
	}
}

func TestPreprocess_SameSizeCopies(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	src.SetRGBA(1, 0, color.RGBA{R: 4, G: 5, B: 6, A: 255})

	dst := make([]float32, 6)
	if err := Preprocess(src, 2, 1, dst); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if want := []float32{1, 2, 3, 4, 5, 6}; !reflect.DeepEqual(dst, want) {
		t.Errorf("expected %v, got %v", want, dst)
	}
}

func TestPreprocess_ShortBuffer(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := Preprocess(src, 4, 4, make([]float32, 10)); err == nil {
		t.Error("expected error for short buffer")
	}
}
