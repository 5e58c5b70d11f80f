// Package artifact resolves and downloads the images that belong to an analysis.
//
// The remote service exposes artifacts under a fixed layout:
//
//	/static/uploads/{id}/original.jpg
//	/static/uploads/{id}/mask.png
//	/static/uploads/{id}/overlay.png
//
// Display URLs carry a "t" query parameter holding the current time in
// milliseconds, so a re-analysis that reuses a path is never served from a
// stale cache. Probe URLs are left plain.
package artifact
