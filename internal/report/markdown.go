package report

import (
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"github.com/nao1215/mriview/internal/model"
)

// MarkdownWriter outputs views in GitHub Flavored Markdown for sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteSubmission implements Writer.
func (w *MarkdownWriter) WriteSubmission(s Submission) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("MRI Analysis")
	md.PlainText("")

	if s.File != nil {
		rows := [][]string{
			{"File", "`" + s.File.Name + "`"},
			{"Type", s.File.MediaType},
			{"Size", humanize.Bytes(uint64(max(s.File.Size, 0)))},
		}
		if s.File.Digest != "" {
			rows = append(rows, []string{"SHA3-256", "`" + truncateString(s.File.Digest, 24) + "`"})
		}
		for _, k := range sortedKeys(s.File.EXIF) {
			rows = append(rows, []string{"EXIF " + k, s.File.EXIF[k]})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	d := s.View.Display
	if d == nil {
		md.PlainTextf("Status: %s", s.View.Phase)
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	switch d.DiagnosisClass {
	case model.DiagnosisTumor:
		md.Warningf("%s", d.DiagnosisText)
	case model.DiagnosisNoTumor:
		md.Tip(d.DiagnosisText)
	default:
		md.Cautionf("%s", d.DiagnosisText)
	}
	md.PlainText("")

	if s.View.ShowResults && d.OriginalURL != "" {
		md.H2("Images")
		md.PlainText("")
		writeImage(md, "Original MRI", d.OriginalURL)
		if d.ShowMask() {
			writeImage(md, "Segmentation Mask", d.MaskURL)
		}
		if d.ShowOverlay() {
			writeImage(md, "Tumor Detection", d.OverlayURL)
		}
	}

	return len(md.String()), md.Build()
}

// WriteHistory implements Writer.
func (w *MarkdownWriter) WriteHistory(v model.HistoryView) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Analysis History")
	md.PlainText("")

	switch v.State {
	case model.HistoryEmpty:
		md.Note(v.Message)
	case model.HistoryFailed:
		md.Cautionf("%s", v.Message)
	default:
		rows := make([][]string, len(v.Entries))
		for i, e := range v.Entries {
			rows[i] = []string{strconv.Itoa(i + 1), e.Date, "`" + e.ID + "`", "![thumbnail](" + e.ThumbnailURL + ")"}
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "Date", "Analysis", "Thumbnail"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	return len(md.String()), md.Build()
}

// WriteDetail implements Writer.
func (w *MarkdownWriter) WriteDetail(d Detail) (int, error) {
	md := markdown.NewMarkdown(w.output)
	c := d.Content

	md.H1("Analysis " + c.AnalysisID)
	md.PlainText("")

	switch {
	case c.Error != "":
		md.Cautionf("%s", c.Error)
		md.PlainText("")
	case c.Loading:
		md.Note("Loading...")
		md.PlainText("")
	default:
		for _, p := range c.Panels {
			md.H2(p.Title)
			md.PlainText("")
			md.PlainTextf("![%s](%s)", p.Alt, p.URL)
			md.PlainText("")
		}
		if c.Placeholder != "" {
			md.Tip(c.Placeholder)
			md.PlainText("")
		}
	}

	if len(d.Saved) > 0 {
		md.H2("Saved Files")
		md.PlainText("")
		items := make([]string, len(d.Saved))
		for i, s := range d.Saved {
			items[i] = s.Kind.String() + ": `" + s.Path + "` (" + humanize.Bytes(uint64(max(s.Size, 0))) + ")"
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

func writeImage(md *markdown.Markdown, title, url string) {
	md.PlainTextf("**%s**", title)
	md.PlainText("")
	md.PlainTextf("![%s](%s)", title, url)
	md.PlainText("")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
