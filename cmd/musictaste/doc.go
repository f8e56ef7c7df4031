// Package main hosts the musictaste CLI.
//
// The analyze command reads a list of Spotify track IDs, resolves them
// through the persistent lookup cache, and writes statistics tables and word
// clouds. The cache, config and doctor commands inspect the pieces analyze
// depends on. Configuration resolution, session IDs, and logging setup live
// in the command context so subcommands only wire internal packages together.
package main
