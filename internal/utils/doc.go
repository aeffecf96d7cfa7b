// Package utils provides shared helper functions for filesystem-safe naming,
// string truncation, content type checks, pacing pauses, and User-Agent selection.
// It keeps repetitive operations consistent across the client and service layers.
package utils
