// Package config loads, normalizes, and validates vinestore configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI and the development daemon need; the store client itself never
// reads configuration and receives a resolved socket path plus options as
// plain arguments.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
