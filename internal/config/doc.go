// Package config defines the format-agnostic pipeline model for the
// application, along with the Loader interface for reading it from various
// file formats and the validation rules every loaded pipeline must satisfy.
//
// The `config.Pipeline` is the single source of truth for the `matrix`,
// `plan` and `executor` packages. Concrete implementations of the Loader
// interface, such as for HCL and YAML, are provided in separate packages.
package config
