// Package model defines the data structures shared by the mriview packages.
//
// This package contains the following groups of types:
//   - AnalysisRecord, AnalysisResult, ArtifactRefs: analyses as the remote service reports them
//   - PredictResponse, HistoryResponse, DeleteResponse: the JSON wire envelopes
//   - Phase: the submission workflow state (Idle, Loading, Result, Error)
//   - DisplayModel, SubmissionView, HistoryView, ModalContent: render output
//   - ImageFile: a local image selected for submission
//
// The package has no dependencies on other mriview packages so that api,
// render, workflow and report can all share it without import cycles.
package model
