package render

import (
	"errors"

	"github.com/nao1215/mriview/internal/api"
	"github.com/nao1215/mriview/internal/artifact"
	"github.com/nao1215/mriview/internal/model"
)

// Fixed history texts.
const (
	EmptyHistoryMessage = "No analysis history found"
	HistoryErrorMessage = "Error loading history"
)

// History renders the full history list. Thumbnails point at the plain
// upload URL of each record's original image.
func History(records []model.AnalysisRecord, r *artifact.Resolver) model.HistoryView {
	if len(records) == 0 {
		return model.HistoryView{
			State:   model.HistoryEmpty,
			Message: EmptyHistoryMessage,
			Entries: []model.HistoryEntry{},
		}
	}

	entries := make([]model.HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, model.HistoryEntry{
			ID:           rec.ID,
			Date:         rec.Date,
			ThumbnailURL: r.Upload(rec.Original),
		})
	}
	return model.HistoryView{State: model.HistoryPopulated, Entries: entries}
}

// HistoryError renders a failed refresh. A message sent by the service is
// shown; any other failure gets the generic text.
func HistoryError(err error) model.HistoryView {
	msg := HistoryErrorMessage
	var de *api.DomainError
	if errors.As(err, &de) {
		msg += ": " + de.Message
	}
	return model.HistoryView{
		State:   model.HistoryFailed,
		Message: msg,
		Entries: []model.HistoryEntry{},
	}
}
