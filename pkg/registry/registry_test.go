package registry

import (
	"errors"
	"testing"

	"github.com/user/framesampler/pkg/ports"
)

func stubFactory(backend string) Factory {
	return Factory{
		Backend:    backend,
		NewSession: func() ports.DecoderSession { return nil },
	}
}

func TestRegistry_RegisterLookup(t *testing.T) {
	r := New()
	if err := r.Register(ports.CodecH264, stubFactory("test")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	f, ok := r.Lookup(ports.CodecH264)
	if !ok {
		t.Fatal("expected h264 to be registered")
	}
	if f.Backend != "test" {
		t.Errorf("expected backend test, got %s", f.Backend)
	}

	if _, ok := r.Lookup(ports.CodecVP9); ok {
		t.Error("expected vp9 to be missing")
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	r := New()
	_ = r.Register(ports.CodecH264, stubFactory("a"))

	err := r.Register(ports.CodecH264, stubFactory("b"))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	f, _ := r.Lookup(ports.CodecH264)
	if f.Backend != "a" {
		t.Errorf("expected first registration to win, got %s", f.Backend)
	}
}

func TestRegistry_Frozen(t *testing.T) {
	r := New()
	r.Freeze()

	err := r.Register(ports.CodecAV1, stubFactory("late"))
	if !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
	if !r.Frozen() {
		t.Error("expected registry to report frozen")
	}
}

func TestRegistry_NilFactory(t *testing.T) {
	r := New()
	if err := r.Register(ports.CodecH264, Factory{Backend: "nil"}); err == nil {
		t.Fatal("expected error for nil NewSession")
	}
}

func TestRegistry_Codecs(t *testing.T) {
	r := New()
	_ = r.Register(ports.CodecVP9, stubFactory("x"))
	_ = r.Register(ports.CodecAV1, stubFactory("x"))
	_ = r.Register(ports.CodecH264, stubFactory("x"))

	got := r.Codecs()
	want := []ports.CodecID{ports.CodecAV1, ports.CodecH264, ports.CodecVP9}
	if len(got) != len(want) {
		t.Fatalf("expected %d codecs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("codec %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestInit_RunsOnce(t *testing.T) {
	calls := 0
	provider := func(r *Registry) error {
		calls++
		return r.Register(ports.CodecMJPEG, stubFactory("once"))
	}

	if err := Init(provider); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := Init(provider); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected provider to run once, ran %d times", calls)
	}
	if !Default().Frozen() {
		t.Error("expected default registry to be frozen after Init")
	}
	if _, ok := Default().Lookup(ports.CodecMJPEG); !ok {
		t.Error("expected mjpeg in default registry")
	}
	if err := Default().Register(ports.CodecVP9, stubFactory("late")); !errors.Is(err, ErrFrozen) {
		t.Errorf("expected ErrFrozen after Init, got %v", err)
	}
}
