// Package config provides typed configuration for WebMark, including
// the strict YAML file loader and the documentation site presets.
package config
