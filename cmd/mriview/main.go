// Package main provides the entry point for the mriview CLI.
//
// mriview submits brain MRI images to a tumor analysis service and browses
// the analyses it has stored.
//
// Usage:
//
//	mriview analyze <image>
//	mriview history
//	mriview show <id|number>
//	mriview delete <id>
//	mriview shell
//
// See --help for all available options.
package main

// main is the entry point for mriview.
func main() {
	Execute()
}
