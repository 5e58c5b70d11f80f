package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/mriview/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds file digests, EXIF tags and image URLs.
	verbose bool

	title cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		title:      cases.Title(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteSubmission implements Writer.
func (w *SimpleWriter) WriteSubmission(s Submission) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "MRI ANALYSIS")

	if s.File != nil {
		fmt.Fprintf(&sb, "File:        %s\n", s.File.Name)
		fmt.Fprintf(&sb, "Type:        %s\n", s.File.MediaType)
		fmt.Fprintf(&sb, "Size:        %s\n", humanize.Bytes(uint64(max(s.File.Size, 0))))
		if w.verbose {
			if s.File.Digest != "" {
				fmt.Fprintf(&sb, "SHA3-256:    %s\n", s.File.Digest)
			}
			for _, k := range sortedKeys(s.File.EXIF) {
				fmt.Fprintf(&sb, "EXIF %-7s%s\n", k+":", s.File.EXIF[k])
			}
		}
		sb.WriteString("\n")
	}

	d := s.View.Display
	switch {
	case d == nil:
		fmt.Fprintf(&sb, "Status:      %s\n", w.title.String(s.View.Phase))
	default:
		fmt.Fprintf(&sb, "Diagnosis:   %s\n", d.DiagnosisText)
		if s.View.ShowResults && d.OriginalURL != "" {
			w.writeImages(&sb, d)
		}
	}

	writeRule(&sb, "=")
	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeImages(sb *strings.Builder, d *model.DisplayModel) {
	sb.WriteString("\n")
	writeSection(sb, "IMAGES")
	fmt.Fprintf(sb, "  [+] %-9s%s\n", "Original", d.OriginalURL)
	if d.ShowMask() {
		fmt.Fprintf(sb, "  [+] %-9s%s\n", "Mask", d.MaskURL)
	}
	if d.ShowOverlay() {
		fmt.Fprintf(sb, "  [+] %-9s%s\n", "Overlay", d.OverlayURL)
	}
	sb.WriteString("\n")
}

// WriteHistory implements Writer.
func (w *SimpleWriter) WriteHistory(v model.HistoryView) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "ANALYSIS HISTORY")

	switch v.State {
	case model.HistoryPopulated:
		for i, e := range v.Entries {
			fmt.Fprintf(&sb, "  %3d  %-19s  %s\n", i+1, e.Date, e.ID)
			if w.verbose {
				fmt.Fprintf(&sb, "       %s\n", e.ThumbnailURL)
			}
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  TOTAL: %d analyses\n", len(v.Entries))
	default:
		fmt.Fprintf(&sb, "  %s\n", v.Message)
	}

	sb.WriteString("\n")
	writeRule(&sb, "=")
	return w.output.Write([]byte(sb.String()))
}

// WriteDetail implements Writer.
func (w *SimpleWriter) WriteDetail(d Detail) (int, error) {
	var sb strings.Builder
	c := d.Content

	writeBanner(&sb, "ANALYSIS DETAIL")

	fmt.Fprintf(&sb, "Analysis:    %s\n", c.AnalysisID)
	fmt.Fprintf(&sb, "State:       %s\n\n", w.title.String(c.Phase.String()))

	switch {
	case c.Error != "":
		fmt.Fprintf(&sb, "  %s\n", c.Error)
	case c.Loading:
		sb.WriteString("  Loading...\n")
	default:
		writeSection(&sb, "IMAGES")
		for _, p := range c.Panels {
			fmt.Fprintf(&sb, "  [+] %-18s %s\n", p.Title, p.URL)
		}
		if c.Placeholder != "" {
			fmt.Fprintf(&sb, "  [-] %s\n", c.Placeholder)
		}
	}

	if len(d.Saved) > 0 {
		sb.WriteString("\n")
		writeSection(&sb, "SAVED")
		for _, s := range d.Saved {
			fmt.Fprintf(&sb, "  [+] %-9s%s (%s)\n", w.title.String(s.Kind.String()), s.Path, humanize.Bytes(uint64(max(s.Size, 0))))
		}
	}

	sb.WriteString("\n")
	writeRule(&sb, "=")
	return w.output.Write([]byte(sb.String()))
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	writeRule(sb, "=")
	pad := max((ruleWidth-len(title))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	writeRule(sb, "=")
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	writeRule(sb, "-")
	sb.WriteString(title)
	sb.WriteString("\n")
	writeRule(sb, "-")
	sb.WriteString("\n")
}

func writeRule(sb *strings.Builder, ch string) {
	sb.WriteString(strings.Repeat(ch, ruleWidth))
	sb.WriteString("\n")
}
