package render

import (
	"github.com/nao1215/mriview/internal/artifact"
	"github.com/nao1215/mriview/internal/model"
)

// Detail view texts.
const (
	ModalLoadingMessage   = "Loading analysis..."
	NoTumorPlaceholder    = "No tumor detected in this analysis"
	modalErrorPrefix      = "Error loading analysis: "
	originalPanelTitle    = "Original MRI"
	maskPanelTitle        = "Segmentation Mask"
	overlayPanelTitle     = "Tumor Detection"
	overlayPanelAlternate = "MRI with Tumor Detection"
)

// ModalLoading is shown while the overlay probe for id is in flight.
func ModalLoading(id string) model.ModalContent {
	return model.ModalContent{
		Phase:       model.ModalOpening,
		AnalysisID:  id,
		Loading:     true,
		Placeholder: ModalLoadingMessage,
	}
}

// ModalPanels renders the detail view of id once the probe has resolved:
// three panels when an overlay exists, otherwise the original alone plus
// the no-tumor placeholder.
func ModalPanels(id string, hasOverlay bool, r *artifact.Resolver) model.ModalContent {
	content := model.ModalContent{
		Phase:      model.ModalOpen,
		AnalysisID: id,
		Panels: []model.ImagePanel{{
			Title: originalPanelTitle,
			URL:   r.Artifact(id, artifact.Original),
			Alt:   originalPanelTitle,
		}},
	}
	if !hasOverlay {
		content.Placeholder = NoTumorPlaceholder
		return content
	}

	content.Panels = append(content.Panels,
		model.ImagePanel{Title: maskPanelTitle, URL: r.Artifact(id, artifact.Mask), Alt: maskPanelTitle},
		model.ImagePanel{Title: overlayPanelTitle, URL: r.Artifact(id, artifact.Overlay), Alt: overlayPanelAlternate},
	)
	return content
}

// ModalError renders a failed open. The analysis id is kept so that the
// record can still be deleted.
func ModalError(id string, err error) model.ModalContent {
	return model.ModalContent{
		Phase:      model.ModalOpen,
		AnalysisID: id,
		Error:      modalErrorPrefix + err.Error(),
	}
}

// ModalClosed is the content of a closed detail view.
func ModalClosed() model.ModalContent {
	return model.ModalContent{Phase: model.ModalClosed}
}
