// Package config loads the gitmate configuration: provider selection,
// per-provider credentials and endpoints, per-model token profiles, and
// prompt templates.
//
// Configuration lives in config.toml under the platform config directory
// (XDG on Linux, Application Support on macOS, APPDATA on Windows), with
// environment variables layered on top. Prompt templates are individual TOML
// files under prompts/ in the same directory; built-in defaults are used for
// any template file that does not exist.
package config
