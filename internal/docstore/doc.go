// Package docstore provides access to the runtime configuration document.
// The document lives in the "config" collection under the id "runtime" and
// carries a private "server" partition next to a client-safe "public" one.
//
// Backends implement Store. Open selects one from Options; a disabled or
// unprovisioned store is represented by Disabled rather than a nil value so
// callers never branch on a flag.
package docstore
