// Package main hosts the imagemill CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into batch
// conversion runs, dropzone watching, metadata inspection, and configuration
// scaffolding. It centralizes configuration resolution, logging setup, and
// session store lifecycle so subcommands can focus on user experience instead
// of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
// That separation keeps the CLI declarative while the heavy lifting lives in
// reusable workflow components.
package main
