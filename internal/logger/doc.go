// Package logger provides the process-wide structured logger built on Zap.
// It exposes context-first helpers for leveled logging, a shared atomic
// log level that can be changed at runtime, and an optional size-rotated
// file sink for long download sessions.
package logger
