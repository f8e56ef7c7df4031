// Package preflight provides readiness checks for the paths and remote
// services musictaste depends on.
//
// The "musictaste doctor" command runs RunAll and renders the results. The
// analyze command runs the credential check on its own so a missing client
// secret fails before the cache is opened.
package preflight
