package model

import (
	"io"
	"time"
)

// ImageFile is a local image selected for submission.
type ImageFile struct {
	// Name is the file name sent in the multipart body.
	Name string

	// MediaType is the declared media type, e.g. "image/jpeg".
	MediaType string

	// Size is the content length in bytes.
	Size int64

	// Digest is the hex SHA3-256 of the content, if computed.
	Digest string

	// EXIF holds a short summary of notable EXIF tags, if any.
	EXIF map[string]string

	// ModTime is the file's modification time.
	ModTime time.Time

	// Open returns a fresh reader over the content. It is called once per
	// submission so that the same selection can be submitted again.
	Open func() (io.ReadCloser, error)
}
