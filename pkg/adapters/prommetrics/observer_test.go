package prommetrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/user/framesampler/pkg/adapters/logger"
	"github.com/user/framesampler/pkg/ports"
)

func TestObserver_Counters(t *testing.T) {
	o := New()

	o.PacketRead(true)
	o.PacketRead(true)
	o.PacketRead(false)
	o.FrameDecoded()
	o.ConversionFailed()
	o.InferenceDone(10*time.Millisecond, nil)
	o.InferenceDone(20*time.Millisecond, errors.New("boom"))
	o.RunFinished(ports.TerminationBudgetExhausted)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"video packets", testutil.ToFloat64(o.packets.WithLabelValues("video")), 2},
		{"skipped packets", testutil.ToFloat64(o.packets.WithLabelValues("skipped")), 1},
		{"frames", testutil.ToFloat64(o.framesDecoded), 1},
		{"conversion failures", testutil.ToFloat64(o.conversionFailed), 1},
		{"inferences ok", testutil.ToFloat64(o.inferences.WithLabelValues("ok")), 1},
		{"inferences error", testutil.ToFloat64(o.inferences.WithLabelValues("error")), 1},
		{"runs", testutil.ToFloat64(o.runs.WithLabelValues("budget_exhausted")), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
	if n := testutil.CollectAndCount(o.inferenceSeconds); n != 1 {
		t.Errorf("expected 1 histogram, got %d", n)
	}
}

func TestObserver_Concurrent(t *testing.T) {
	o := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				o.FrameDecoded()
			}
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(o.framesDecoded); got != 800 {
		t.Errorf("expected 800 frames, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	o := New()
	o.FrameDecoded()
	srv := httptest.NewServer(o.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "framesampler_frames_decoded_total 1") {
		t.Errorf("metrics output missing frame counter:\n%s", body)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestListen(t *testing.T) {
	o := New()
	s, err := Listen("127.0.0.1:0", newMux(o.Registry()), logger.NewNoop())
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer s.Shutdown(context.Background())

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
