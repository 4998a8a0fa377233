// Package orchestrator assembles a form session: a schema source (optionally
// transformed), the state store, the composer and the renderer registry.
package orchestrator
