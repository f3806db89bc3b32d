// Package fileutil copies extracted outputs out of the shared output directory
// with integrity verification.
package fileutil
