package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/framesampler/pkg/ports"
)

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewConsoleWriter(ports.LevelInfo, &out, &errOut)

	l.Debug("hidden %d", 1)
	l.Info("frame %d", 3)
	l.Warn("inference failed on frame %d: %s", 6, "boom")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out.String(), "frame 3") {
		t.Errorf("expected info on stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "inference failed on frame 6: boom") {
		t.Errorf("expected warning on stderr, got %q", errOut.String())
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleWriter(ports.LevelDebug, &out, &out)

	l.WithComponent("decoder").WithComponent("ffmpeg").Debug("opened")

	if got := strings.TrimSpace(out.String()); got != "[decoder/ffmpeg] opened" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleWriter(ports.LevelQuiet, &out, &out)

	l.Error("nothing")

	if out.Len() != 0 {
		t.Errorf("expected no output in quiet mode, got %q", out.String())
	}
}
