package model

import "bytes"

// WireBool decodes the service's string-encoded booleans. Only the exact JSON
// string "true" decodes to true; anything else, including a JSON boolean,
// decodes to false. Encoding always produces "true" or "false".
type WireBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *WireBool) UnmarshalJSON(data []byte) error {
	*b = WireBool(bytes.Equal(bytes.TrimSpace(data), []byte(`"true"`)))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b WireBool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte(`"true"`), nil
	}
	return []byte(`"false"`), nil
}

// PredictResponse is the body of POST /api/predict (or /predict).
type PredictResponse struct {
	HasTumor WireBool     `json:"has_tumor"`
	Accuracy float64      `json:"accuracy"`
	Images   ArtifactRefs `json:"images"`
	Error    string       `json:"error,omitempty"`
}

// Result converts the wire body into an AnalysisResult.
func (r PredictResponse) Result() AnalysisResult {
	return AnalysisResult{
		HasTumor:   bool(r.HasTumor),
		Confidence: r.Accuracy,
		Images:     r.Images,
	}
}

// HistoryResponse is the body of GET /api/history.
type HistoryResponse struct {
	Analyses []AnalysisRecord `json:"analyses"`
	Error    string           `json:"error,omitempty"`
}

// DeleteResponse is the body of DELETE /api/delete/{id}.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
