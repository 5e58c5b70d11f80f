package render

import (
	"math"
	"strconv"

	"github.com/nao1215/mriview/internal/artifact"
	"github.com/nao1215/mriview/internal/model"
)

// Diagnosis headlines.
const (
	TumorHeadline   = "Tumor detected"
	NoTumorHeadline = "No tumor detected"
)

// FormatConfidence formats a confidence fraction as a percentage with two
// decimals, e.g. 0.8734 becomes "87.34%". Halves round away from zero.
// Out-of-range values are formatted as given.
func FormatConfidence(c float64) string {
	return strconv.FormatFloat(math.Round(c*10000)/100, 'f', 2, 64) + "%"
}

// Result builds the display model of a successful analysis. The mask and
// overlay panels are shown only for a positive diagnosis, and each only when
// the service referenced it.
func Result(result model.AnalysisResult, r *artifact.Resolver) model.DisplayModel {
	confidence := FormatConfidence(result.Confidence)

	d := model.DisplayModel{
		DiagnosisText:  NoTumorHeadline + " (confidence: " + confidence + ")",
		DiagnosisClass: model.DiagnosisNoTumor,
		Confidence:     confidence,
		OriginalURL:    r.Busted(result.Images.Original),
	}
	if !result.HasTumor {
		return d
	}

	d.DiagnosisText = TumorHeadline + " (confidence: " + confidence + ")"
	d.DiagnosisClass = model.DiagnosisTumor
	if result.Images.HasMask() {
		d.MaskURL = r.Busted(result.Images.Mask)
	}
	if result.Images.HasOverlay() {
		d.OverlayURL = r.Busted(result.Images.Overlay)
	}
	return d
}

// Failure builds the display model of a failed submission.
func Failure(message string) model.DisplayModel {
	return model.DisplayModel{
		DiagnosisText:  "Error: " + message,
		DiagnosisClass: model.DiagnosisError,
	}
}

// Submission derives the whole submission area from phase. The loading
// indicator and the results panel are never visible together.
func Submission(phase model.Phase, r *artifact.Resolver) model.SubmissionView {
	view := model.SubmissionView{Phase: phase.Kind().String()}

	switch p := phase.(type) {
	case model.Loading:
		view.ShowLoading = true
	case model.Result:
		d := Result(p.Analysis, r)
		view.ShowResults = true
		view.Display = &d
	case model.Failed:
		d := Failure(p.Message)
		view.ShowResults = true
		view.Display = &d
	}
	return view
}
