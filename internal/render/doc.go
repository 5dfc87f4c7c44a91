// Package render runs the page pipeline against the shared browser session:
// acquire, navigate, settle, extract and reset.
package render
