// Package template defines the template engine seam renderers depend on.
// The pongo2-backed implementation lives in the pongo subpackage.
package template
