// Package config loads run configuration from YAML files and the
// environment.
package config
