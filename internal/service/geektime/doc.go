// Package geektime provides the core functionality for downloading paid
// content from the GeekTime service. It handles URL processing, metadata
// fetching, and organizing courses, articles, and daily lesson collections
// into folders based on configuration templates.
package geektime
