// Package workflow holds the stateful controllers of the analysis workflow:
// the Submitter drives one submission at a time through its phases, the
// HistorySync keeps the history list in step with the service, and the
// Modal owns the detail view of a past analysis and its deletion.
//
// Controllers never return service failures to their callers. Every failure
// is turned into view state and pushed to the corresponding view.
package workflow
