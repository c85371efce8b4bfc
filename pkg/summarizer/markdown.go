package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(summary *Summary) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# Sampling Summary\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", summary.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Settings\n\n")
	sb.WriteString("| Setting | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Model | %s |\n", orDash(summary.Settings.Model))
	fmt.Fprintf(&sb, "| Max packets | %d |\n", summary.Settings.MaxPackets)
	fmt.Fprintf(&sb, "| Sample interval | %d |\n", summary.Settings.SampleInterval)
	fmt.Fprintf(&sb, "| Backend | %s |\n", orDash(summary.Settings.Backend))
	fmt.Fprintf(&sb, "| Converter | %s |\n", orDash(summary.Settings.Converter))

	for _, run := range summary.Runs {
		sb.WriteString("\n")
		f.writeRun(&sb, run)
	}
	return []byte(sb.String()), nil
}

func (f *MarkdownFormatter) writeRun(sb *strings.Builder, run RunSummary) {
	fmt.Fprintf(sb, "## %s\n\n", run.Path)
	fmt.Fprintf(sb, "- Run: `%s`\n", run.RunID)
	if run.Codec != "" {
		fmt.Fprintf(sb, "- Stream: %s %dx%d (%s)\n", run.Codec, run.Width, run.Height, orDash(run.Format))
	}
	fmt.Fprintf(sb, "- Termination: %s\n", run.Termination)
	if run.Error != "" {
		fmt.Fprintf(sb, "- Error: %s\n", run.Error)
	}
	fmt.Fprintf(sb, "- Packets: %d read, %d video, %d skipped\n", run.PacketsRead, run.VideoPackets, run.SkippedPackets)
	fmt.Fprintf(sb, "- Frames: %d decoded, %d converted, %d conversion failures\n", run.FramesDecoded, run.FramesConverted, run.ConversionFailures)
	fmt.Fprintf(sb, "- Elapsed: %d ms\n", run.ElapsedMs)

	if len(run.Samples) == 0 {
		return
	}
	sb.WriteString("\n| Frame | Prediction | Score | Saved |\n|---:|---|---:|---|\n")
	for _, s := range run.Samples {
		prediction := "-"
		score := "-"
		if s.Error != "" {
			prediction = "error: " + s.Error
		} else if s.Label != "" {
			prediction = fmt.Sprintf("%s (%d)", s.Label, s.ClassID)
			score = fmt.Sprintf("%.4f", s.Score)
		}
		fmt.Fprintf(sb, "| %d | %s | %s | %s |\n", s.Frame, prediction, score, orDash(s.SavedPath))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
