// Package hcl provides the concrete HCL implementation of the pipeline
// Loader interface defined in the `config` package. It is responsible for
// file parsing, schema enforcement, and HCL-to-model translation. Step and
// action expressions are carried into the model unevaluated; the `plan`
// package evaluates them once per environment.
package hcl
