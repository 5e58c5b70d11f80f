package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/mriview/internal/model"
)

// JSONWriter outputs views as JSON.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
// Output is compact unless an indent option is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// fileJSON is the serializable part of model.ImageFile.
type fileJSON struct {
	Name      string            `json:"name"`
	MediaType string            `json:"mediaType"`
	Size      int64             `json:"size"`
	Digest    string            `json:"sha3_256,omitempty"`
	EXIF      map[string]string `json:"exif,omitempty"`
	ModTime   *time.Time        `json:"modTime,omitempty"`
}

type submissionJSON struct {
	File   *fileJSON            `json:"file,omitempty"`
	Result model.SubmissionView `json:"result"`
}

type savedJSON struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

type detailJSON struct {
	model.ModalContent
	Saved []savedJSON `json:"saved,omitempty"`
}

// WriteSubmission implements Writer.
func (w *JSONWriter) WriteSubmission(s Submission) (int, error) {
	out := submissionJSON{Result: s.View}
	if s.File != nil {
		f := &fileJSON{
			Name:      s.File.Name,
			MediaType: s.File.MediaType,
			Size:      s.File.Size,
			Digest:    s.File.Digest,
			EXIF:      s.File.EXIF,
		}
		if !s.File.ModTime.IsZero() {
			mt := s.File.ModTime
			f.ModTime = &mt
		}
		out.File = f
	}
	return w.writeJSON(out)
}

// WriteHistory implements Writer.
func (w *JSONWriter) WriteHistory(v model.HistoryView) (int, error) {
	return w.writeJSON(v)
}

// WriteDetail implements Writer.
func (w *JSONWriter) WriteDetail(d Detail) (int, error) {
	out := detailJSON{ModalContent: d.Content}
	for _, s := range d.Saved {
		out.Saved = append(out.Saved, savedJSON{Kind: s.Kind.String(), Path: s.Path, Size: s.Size})
	}
	return w.writeJSON(out)
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
