// Package config loads the service settings from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. It covers the HTTP server, logging, rate
// limiting and the document store that holds the runtime config document.
package config
