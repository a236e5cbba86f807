// Package config provides configuration for petrd: defaults, validation,
// the optional .petrd YAML file and XDG directory locations.
package config
