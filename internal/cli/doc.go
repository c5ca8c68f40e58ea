// Package cli defines the command-line surface of buildgridgo: the run,
// validate and serve commands, their flags, and the mapping from error kinds
// to exit codes (0 success, 1 run failure, 2 malformed definition or flags).
package cli
