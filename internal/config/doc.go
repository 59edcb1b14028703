// SPDX-License-Identifier: MPL-2.0

// Package config handles ccmeta configuration using Viper with CUE as the file format.
//
// Configuration is read from the --config flag, else config.cue in the user
// config directory (~/.config/ccmeta on Linux, ~/Library/Application
// Support/ccmeta on macOS, %APPDATA%\ccmeta on Windows), else ccmeta.cue in
// the working directory. Files are validated against the embedded #Config
// schema (config_schema.cue) and merged over the defaults; CCMETA_*
// environment variables override both.
package config
