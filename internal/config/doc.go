// Package config loads SecretShields settings from global and local YAML
// files, fills documented defaults for anything missing or malformed, and
// keeps live settings current while a session runs.
package config
