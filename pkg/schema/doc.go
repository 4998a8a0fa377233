// Package schema defines the field schema a form is rendered from and the
// values collected while filling it in. Field values are modelled as a small
// tagged union (Value) so dependency comparisons stay strict: a stored string
// "true" never satisfies a boolean dependency. Documents entering the system
// are decoded and checked here (Decode, Check) before any renderer or store
// sees them, and Fallback provides the built-in schema used when a source
// cannot be reached.
package schema
