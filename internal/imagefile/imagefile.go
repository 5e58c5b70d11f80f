// Package imagefile loads local images for submission. It determines the
// media type from the content, computes a digest and extracts a short EXIF
// summary.
package imagefile

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/crypto/sha3"

	"github.com/nao1215/mriview/internal/model"
)

// ErrNotRegularFile is returned when the path is a directory or device.
var ErrNotRegularFile = errors.New("not a regular file")

// exifTags are the tags kept in the EXIF summary.
var exifTags = map[string]bool{
	"Make":             true,
	"Model":            true,
	"Software":         true,
	"DateTimeOriginal": true,
	"DateTime":         true,
	"ImageDescription": true,
	"PixelXDimension":  true,
	"PixelYDimension":  true,
}

// Load reads the file at path. The media type is detected from the content,
// not from the extension, so a renamed file is reported as what it is.
//
// A file larger than maxSize is not read in full: only its head is sniffed
// for the media type, and Digest and EXIF stay empty. A maxSize of zero
// reads every file.
func Load(path string, maxSize int64) (*model.ImageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}

	f := &model.ImageFile{
		Name:    filepath.Base(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path) //nolint:gosec // path is chosen by the user
		},
	}
	if maxSize > 0 && info.Size() > maxSize {
		if f.MediaType, err = sniff(path); err != nil {
			return nil, err
		}
		return f, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	digest := sha3.Sum256(data)
	f.MediaType = MediaType(data)
	f.Size = int64(len(data))
	f.Digest = hex.EncodeToString(digest[:])
	f.EXIF = EXIFSummary(data)
	return f, nil
}

// MediaType returns the media type of data without parameters,
// e.g. "image/png" or "text/plain".
func MediaType(data []byte) string {
	return withoutParams(mimetype.Detect(data))
}

// sniff detects the media type from the head of the file at path.
func sniff(path string) (string, error) {
	fh, err := os.Open(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fh.Close() //nolint:errcheck // read-only

	mt, err := mimetype.DetectReader(fh)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return withoutParams(mt), nil
}

func withoutParams(mt *mimetype.MIME) string {
	s, _, _ := strings.Cut(mt.String(), ";")
	return strings.TrimSpace(s)
}

// EXIFSummary returns the notable EXIF tags of data, or nil when the image
// carries no EXIF block.
func EXIFSummary(data []byte) map[string]string {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	summary := make(map[string]string)
	for _, entry := range entries {
		if !exifTags[entry.TagName] || entry.Formatted == "" {
			continue
		}
		if _, seen := summary[entry.TagName]; seen {
			continue
		}
		summary[entry.TagName] = entry.Formatted
	}
	if len(summary) == 0 {
		return nil
	}
	return summary
}

// Describe returns a one-line description such as "scan.jpg (image/jpeg, 24 kB)".
func Describe(f *model.ImageFile) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%s (%s, %s)", f.Name, f.MediaType, humanize.Bytes(uint64(f.Size))) //nolint:gosec // size is never negative
}
