package model

// Diagnosis CSS-style classes carried by DisplayModel.DiagnosisClass.
const (
	DiagnosisTumor   = "tumor"
	DiagnosisNoTumor = "no-tumor"
	DiagnosisError   = "error"
)

// DisplayModel is the rendered form of a submission outcome.
type DisplayModel struct {
	// DiagnosisText is the headline shown in the diagnosis panel.
	DiagnosisText string `json:"diagnosisText"`

	// DiagnosisClass is one of DiagnosisTumor, DiagnosisNoTumor or DiagnosisError.
	DiagnosisClass string `json:"diagnosisClass"`

	// Confidence is the formatted percentage ("87.34%"); empty for errors.
	Confidence string `json:"confidence,omitempty"`

	// OriginalURL is the cache-busted URL of the submitted image.
	OriginalURL string `json:"originalUrl,omitempty"`

	// MaskURL is set only when the mask panel is visible.
	MaskURL string `json:"maskUrl,omitempty"`

	// OverlayURL is set only when the overlay panel is visible.
	OverlayURL string `json:"overlayUrl,omitempty"`
}

// ShowMask reports whether the mask panel is visible.
func (d DisplayModel) ShowMask() bool { return d.MaskURL != "" }

// ShowOverlay reports whether the overlay panel is visible.
func (d DisplayModel) ShowOverlay() bool { return d.OverlayURL != "" }

// SubmissionView is the complete visible state of the submission area,
// derived from a single Phase.
type SubmissionView struct {
	Phase       string        `json:"phase"`
	ShowLoading bool          `json:"showLoading"`
	ShowResults bool          `json:"showResults"`
	Display     *DisplayModel `json:"display,omitempty"`
}

// HistoryState names which of the three history renderings is active.
type HistoryState int

const (
	// HistoryPopulated renders one entry per record.
	HistoryPopulated HistoryState = iota

	// HistoryEmpty renders the empty placeholder.
	HistoryEmpty

	// HistoryFailed renders an error message.
	HistoryFailed
)

// String returns the state name.
func (s HistoryState) String() string {
	switch s {
	case HistoryPopulated:
		return "populated"
	case HistoryEmpty:
		return "empty"
	case HistoryFailed:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s HistoryState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// HistoryEntry is one rendered history item.
type HistoryEntry struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// HistoryView is the complete rendered history list.
type HistoryView struct {
	State   HistoryState   `json:"state"`
	Message string         `json:"message,omitempty"`
	Entries []HistoryEntry `json:"entries"`
}

// ModalPhase is the Modal/Detail state machine position.
type ModalPhase int

const (
	// ModalClosed means no detail view is shown.
	ModalClosed ModalPhase = iota

	// ModalOpening means the overlay probe is in progress.
	ModalOpening

	// ModalOpen means content (or an error placeholder) is shown.
	ModalOpen
)

// String returns the modal phase name.
func (p ModalPhase) String() string {
	switch p {
	case ModalClosed:
		return "closed"
	case ModalOpening:
		return "opening"
	case ModalOpen:
		return "open"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p ModalPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ModalState is the state owned by the Modal/Detail controller.
type ModalState struct {
	Open       bool   `json:"open"`
	AnalysisID string `json:"analysisId,omitempty"`

	// HasOverlay is nil until the overlay probe resolves.
	HasOverlay *bool `json:"hasOverlay,omitempty"`
}

// ImagePanel is one image shown in the detail view.
type ImagePanel struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Alt   string `json:"alt"`
}

// ModalContent is what the detail view currently displays.
type ModalContent struct {
	Phase       ModalPhase   `json:"phase"`
	AnalysisID  string       `json:"analysisId"`
	Loading     bool         `json:"loading,omitempty"`
	Panels      []ImagePanel `json:"panels,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Error       string       `json:"error,omitempty"`
}
