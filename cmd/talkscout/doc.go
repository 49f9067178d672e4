// Package main hosts the talkscout CLI entrypoint and command graph.
//
// The Cobra-based command tree attributes speakers from talk titles, builds
// the talk list CSV from a YouTube search, runs single and batch captures,
// and inspects capture history and environment readiness. Configuration
// resolution and logger setup live in commandContext so subcommands only
// wire internal packages together.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
