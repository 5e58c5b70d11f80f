// Package report writes the views of mriview for the terminal or for files.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: structured JSON for scripts
//   - MarkdownWriter: GitHub Flavored Markdown for sharing
//
// Writers implement the Writer interface and are chosen with New.
package report
