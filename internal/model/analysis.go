package model

// AnalysisRecord is one entry of the analysis history as returned by
// GET /api/history. Records are immutable on the client; ID is the identity
// used to build artifact URLs and deletion requests.
type AnalysisRecord struct {
	// ID is the server-side identifier, e.g. "analysis_20240131120000".
	ID string `json:"id"`

	// Original is the upload-relative path of the original image,
	// e.g. "analysis_20240131120000/original.jpg".
	Original string `json:"original"`

	// Date is the display-formatted timestamp ("31/01/2024 12:00:00").
	Date string `json:"date"`
}

// ArtifactRefs holds upload-relative paths of the images produced by one
// analysis. Mask and Overlay are independently optional.
type ArtifactRefs struct {
	Original string `json:"original"`
	Mask     string `json:"mask,omitempty"`
	Overlay  string `json:"overlay,omitempty"`
}

// HasMask reports whether a mask artifact was referenced.
func (a ArtifactRefs) HasMask() bool {
	return a.Mask != ""
}

// HasOverlay reports whether an overlay artifact was referenced.
func (a ArtifactRefs) HasOverlay() bool {
	return a.Overlay != ""
}

// AnalysisResult is the outcome of one submission. It exists only while the
// outcome is being rendered and is never persisted.
type AnalysisResult struct {
	// HasTumor is the classification result.
	HasTumor bool `json:"hasTumor"`

	// Confidence is the classifier confidence as a fraction. Values outside
	// [0,1] are passed through unchanged.
	Confidence float64 `json:"confidence"`

	// Images references the generated artifacts.
	Images ArtifactRefs `json:"images"`
}
