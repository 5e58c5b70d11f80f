package report

import (
	"io"
	"maps"
	"slices"

	"github.com/nao1215/mriview/internal/artifact"
	"github.com/nao1215/mriview/internal/model"
)

// Format selects a Writer implementation.
type Format int

const (
	// FormatText is human-readable text.
	FormatText Format = iota

	// FormatJSON is indented JSON.
	FormatJSON

	// FormatMarkdown is GitHub Flavored Markdown.
	FormatMarkdown
)

// Submission is the outcome of one submission together with the file it
// was made for.
type Submission struct {
	File *model.ImageFile
	View model.SubmissionView
}

// Detail is the detail view of one analysis, with any artifacts saved locally.
type Detail struct {
	Content model.ModalContent
	Saved   []artifact.Saved
}

// Writer writes views in one output format.
// Each method returns the number of bytes written.
type Writer interface {
	WriteSubmission(s Submission) (int, error)
	WriteHistory(v model.HistoryView) (int, error)
	WriteDetail(d Detail) (int, error)
}

// New returns the Writer for format. Verbose adds the file digest, EXIF
// tags and thumbnail URLs to the text format.
func New(output io.Writer, format Format, verbose bool) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output, WithVerbose(verbose))
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
