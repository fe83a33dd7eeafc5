// Package config loads, normalizes, and validates jimaku configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for the LLM
// API key. The file is looked up at ~/.config/jimaku/config.toml and then
// ./jimaku.toml unless a path is given explicitly.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
