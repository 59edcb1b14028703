// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// FormatJSON writes reports as indented JSON.
	FormatJSON ReportFormat = "json"
	// FormatYAML writes reports as YAML.
	FormatYAML ReportFormat = "yaml"
	// FormatTOML writes reports as TOML.
	FormatTOML ReportFormat = "toml"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidReportFormat is returned when a ReportFormat value is not recognized.
	ErrInvalidReportFormat = errors.New("invalid report format")
	// ErrInvalidBinaryName is returned when a BinaryName value is whitespace-only.
	ErrInvalidBinaryName = errors.New("invalid binary name")
	// ErrInvalidBazelConfig is the sentinel error wrapped by InvalidBazelConfigError.
	ErrInvalidBazelConfig = errors.New("invalid bazel config")
	// ErrInvalidAuditConfig is the sentinel error wrapped by InvalidAuditConfigError.
	ErrInvalidAuditConfig = errors.New("invalid audit config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// ReportFormat names the encoding of the check report.
	ReportFormat string

	// InvalidReportFormatError is returned when a ReportFormat value is not recognized.
	InvalidReportFormatError struct {
		Value ReportFormat
	}

	// BinaryName is an executable name or path. The zero value means the
	// tool's default name looked up on PATH.
	BinaryName string

	// InvalidBinaryNameError is returned when a BinaryName value is
	// non-empty but whitespace-only.
	InvalidBinaryNameError struct {
		Value BinaryName
	}

	// InvalidBazelConfigError collects field errors of a BazelConfig.
	InvalidBazelConfigError struct {
		FieldErrors []error
	}

	// InvalidAuditConfigError collects field errors of an AuditConfig.
	InvalidAuditConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError collects field errors of a UIConfig.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sections.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Bazel     BazelConfig     `json:"bazel" mapstructure:"bazel"`
		Buildozer BuildozerConfig `json:"buildozer" mapstructure:"buildozer"`
		Audit     AuditConfig     `json:"audit" mapstructure:"audit"`
		UI        UIConfig        `json:"ui" mapstructure:"ui"`
	}

	// BazelConfig configures how the build tool is invoked by refresh and fix.
	BazelConfig struct {
		// Binary is the build tool executable (default "bazel").
		Binary BinaryName `json:"binary" mapstructure:"binary"`
		// Flags is a shell-quoted string appended to every query and build.
		Flags string `json:"flags" mapstructure:"flags"`
		// TargetPatterns are the patterns refresh discovers targets under.
		TargetPatterns []string `json:"target_patterns" mapstructure:"target_patterns"`
		// Aspect is the label of the metadata aspect.
		Aspect string `json:"aspect" mapstructure:"aspect"`
		// QueryAttempts bounds retries of transient label query failures.
		QueryAttempts int `json:"query_attempts" mapstructure:"query_attempts"`
	}

	// BuildozerConfig configures the build file editor.
	BuildozerConfig struct {
		Binary BinaryName `json:"binary" mapstructure:"binary"`
	}

	// AuditConfig configures the resolution run and workspace artifacts.
	AuditConfig struct {
		// Jobs bounds parallel target resolution; 0 means GOMAXPROCS.
		Jobs int `json:"jobs" mapstructure:"jobs"`
		// Format is the default check report format.
		Format ReportFormat `json:"format" mapstructure:"format"`
		// ExportsFile is the workspace-relative export map written by refresh.
		ExportsFile string `json:"exports_file" mapstructure:"exports_file"`
		// IssuesFile is the workspace-relative issue map written by refresh.
		IssuesFile string `json:"issues_file" mapstructure:"issues_file"`
		// CompileCommandsFile is the workspace-relative compilation database
		// written by refresh.
		CompileCommandsFile string `json:"compile_commands_file" mapstructure:"compile_commands_file"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
		// Interactive enables prompts when fix meets ambiguous candidates.
		Interactive bool `json:"interactive" mapstructure:"interactive"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Bazel: BazelConfig{
			Binary:         "bazel",
			TargetPatterns: []string{"//..."},
			Aspect:         "@ccmeta//:aspect.bzl%cc_meta_aspect",
			QueryAttempts:  3,
		},
		Buildozer: BuildozerConfig{Binary: "buildozer"},
		Audit: AuditConfig{
			Format:              FormatJSON,
			ExportsFile:         "target_exports.json",
			IssuesFile:          "dependency_issues.json",
			CompileCommandsFile: "compile_commands.json",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Interactive: true,
		},
	}
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the ReportFormat.
func (f ReportFormat) String() string { return string(f) }

// IsValid returns whether the ReportFormat is supported.
func (f ReportFormat) IsValid() (bool, []error) {
	switch f {
	case FormatJSON, FormatYAML, FormatTOML:
		return true, nil
	default:
		return false, []error{&InvalidReportFormatError{Value: f}}
	}
}

// Error implements the error interface.
func (e *InvalidReportFormatError) Error() string {
	return fmt.Sprintf("invalid report format %q (valid: json, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidReportFormat for errors.Is() compatibility.
func (e *InvalidReportFormatError) Unwrap() error { return ErrInvalidReportFormat }

// String returns the string representation of the BinaryName.
func (b BinaryName) String() string { return string(b) }

// IsValid returns whether the BinaryName is valid. The zero value is valid.
func (b BinaryName) IsValid() (bool, []error) {
	if b != "" && strings.TrimSpace(string(b)) == "" {
		return false, []error{&InvalidBinaryNameError{Value: b}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidBinaryNameError) Error() string {
	return fmt.Sprintf("invalid binary name %q: must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidBinaryName for errors.Is() compatibility.
func (e *InvalidBinaryNameError) Unwrap() error { return ErrInvalidBinaryName }

// IsValid returns whether the BazelConfig has valid fields.
func (c BazelConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Binary.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for i, p := range c.TargetPatterns {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("target_patterns[%d]: must be non-empty", i))
		}
	}
	if c.QueryAttempts < 0 {
		errs = append(errs, fmt.Errorf("query_attempts: must be positive, got %d", c.QueryAttempts))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidBazelConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidBazelConfigError) Error() string {
	return fmt.Sprintf("invalid bazel config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidBazelConfig followed by the field errors, so errors.Is
// matches both the section and the individual field sentinels.
func (e *InvalidBazelConfigError) Unwrap() []error {
	return append([]error{ErrInvalidBazelConfig}, e.FieldErrors...)
}

// IsValid returns whether the AuditConfig has valid fields.
func (c AuditConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs: must not be negative, got %d", c.Jobs))
	}
	if valid, fieldErrs := c.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidAuditConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidAuditConfigError) Error() string {
	return fmt.Sprintf("invalid audit config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidAuditConfig followed by the field errors, so errors.Is
// matches both the section and the individual field sentinels.
func (e *InvalidAuditConfigError) Unwrap() []error {
	return append([]error{ErrInvalidAuditConfig}, e.FieldErrors...)
}

// IsValid returns whether the UIConfig has valid fields.
// Only ColorScheme needs checking; bool fields are always valid.
func (c UIConfig) IsValid() (bool, []error) {
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		return false, []error{&InvalidUIConfigError{FieldErrors: fieldErrs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidUIConfig followed by the field errors, so errors.Is
// matches both the section and the individual field sentinels.
func (e *InvalidUIConfigError) Unwrap() []error {
	return append([]error{ErrInvalidUIConfig}, e.FieldErrors...)
}

// IsValid returns whether the Config has valid fields in every section.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Bazel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Buildozer.Binary.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Audit.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is
// matches both the section and the individual field sentinels.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
