// Package runtimeconfig resolves the runtime configuration snapshot served to
// clients. Initialize runs once at startup: it reads the runtime document from
// a docstore.Store, keeps the server partition private, and overlays
// prefix-matched environment variables onto the public partition. The
// resulting Snapshot is immutable and safe for concurrent reads.
package runtimeconfig
