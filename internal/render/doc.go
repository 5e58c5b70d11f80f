// Package render turns service responses and workflow phases into the view
// models shown to the user. Every function here is pure apart from the
// cache-busting token supplied by the artifact resolver.
package render
