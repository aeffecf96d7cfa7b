// Package geektime provides a Go client for the GeekTime content API,
// offering access to paid courses, articles, comment threads, and daily
// lesson video collections. It handles password login with session cookies,
// a randomized browser identity per session, and a uniform POST-and-validate
// request path with a single transparent replay after transport failures.
// Key features include course and article metadata retrieval, cursor-based
// comment pagination, video collection listings, and asset downloading.
// The client caches course introductions to avoid redundant API calls
// and implements structured error handling for API interactions.
package geektime
