// Package config loads and validates clipsight's TOML configuration. Values
// come from an explicit path, ~/.config/clipsight/config.toml, or a
// project-local clipsight.toml, merged over repository defaults. All path
// fields are expanded and normalized before use.
package config
