// Package config loads, normalizes, and validates imagemill configuration.
//
// Configuration lives in a TOML file (default ~/.config/imagemill/config.toml,
// with imagemill.toml in the working directory as a project-local fallback).
// Load applies defaults first, then file values, then normalization (path
// expansion, whitespace trimming) and validation. All path fields on a loaded
// Config are absolute.
package config
