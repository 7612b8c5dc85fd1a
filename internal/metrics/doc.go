// Package metrics exposes Prometheus metrics for HTTP traffic and the
// runtime configuration load. Each Collector owns its registry so tests and
// multiple app instances never collide on registration.
package metrics
