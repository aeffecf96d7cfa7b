// Package http provides custom HTTP transport middleware:
// debug-level request/response logging with credential masking,
// and User-Agent header injection for requests that don't set one.
package http
