package orchestrator

import (
	"errors"
	"reflect"
	"testing"
)

func TestReleaseStack_ReverseOrderOnce(t *testing.T) {
	var order []string
	var s releaseStack
	for _, name := range []string{"container", "decoder", "converter"} {
		name := name
		s.push(name, func() error {
			order = append(order, name)
			return nil
		})
	}

	if err := s.unwind(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.unwind(); err != nil {
		t.Fatalf("unexpected error on second unwind: %v", err)
	}

	want := []string{"converter", "decoder", "container"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestReleaseStack_ContinuesAfterError(t *testing.T) {
	closeErr := errors.New("close failed")
	released := 0
	var s releaseStack
	s.push("a", func() error { released++; return nil })
	s.push("b", func() error { released++; return closeErr })

	err := s.unwind()
	if !errors.Is(err, closeErr) {
		t.Errorf("expected close error, got %v", err)
	}
	if released != 2 {
		t.Errorf("expected both entries released, got %d", released)
	}
}

func TestReleaseStack_Empty(t *testing.T) {
	var s releaseStack
	if err := s.unwind(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
