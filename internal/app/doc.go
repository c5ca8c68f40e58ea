// Package app wires the pieces of a pipeline run together: it loads and
// validates the pipeline definition, expands the matrix, resolves every
// environment's plan, drives the executor, and renders the final report. The
// CLI and the HTTP trigger adapter are both thin shells around this package.
package app
