// Package config loads, normalizes, and validates vidqueue configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours VIDQUEUE_* environment overrides.
// File locations that are left blank (settings, key list, link list, lock,
// credential store) are placed inside paths.data_dir.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
