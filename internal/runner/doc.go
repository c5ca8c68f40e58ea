// Package runner executes the resolved step sequence of one environment.
// Steps run strictly in declaration order, each as an isolated external
// process inside an ephemeral per-environment workspace. Failure policy per
// step (continue_on_error), per-step timeouts, and cooperative fail-fast
// cancellation between steps are all handled here.
//
// The runner never inherits the host's ambient environment: every step's
// process environment is assembled explicitly from the configured base
// environment, the resolved step env, the MATRIX_* axis injection, and the
// BUILDGRID_* run metadata.
package runner
