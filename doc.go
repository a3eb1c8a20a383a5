// Package docchat is a Go client for the Doc Chat AI HTTP API:
// - single client type with an immutable configuration
// - complete responses via Send, incremental responses via SendStream
// - SSE stream decoding resilient to arbitrary transport fragmentation
// - one structured error type carrying status, message and raw payload
package docchat
