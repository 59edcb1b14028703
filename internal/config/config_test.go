// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ccmeta/ccmeta/internal/issue"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// isolated returns options that never touch the real user configuration.
func isolated(t *testing.T) LoadOptions {
	t.Helper()
	return LoadOptions{ConfigDirPath: t.TempDir(), WorkDir: t.TempDir()}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), isolated(t))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestLoad_UserConfigDir(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	want := writeConfig(t, opts.ConfigDirPath, "config.cue", `
audit: jobs: 4
ui: color_scheme: "dark"
bazel: target_patterns: ["//src/...", "//lib/..."]
`)

	cfg, path, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if cfg.Audit.Jobs != 4 || cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Bazel.TargetPatterns, []string{"//src/...", "//lib/..."}) {
		t.Errorf("TargetPatterns = %v", cfg.Bazel.TargetPatterns)
	}
	if cfg.Bazel.Binary != "bazel" || cfg.Audit.Format != FormatJSON {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_LocalFileInWorkDir(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	want := writeConfig(t, opts.WorkDir, LocalConfigFile, `buildozer: binary: "/opt/buildozer"`)

	cfg, path, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if path != want || cfg.Buildozer.Binary != "/opt/buildozer" {
		t.Errorf("path = %q, binary = %q", path, cfg.Buildozer.Binary)
	}
}

func TestLoad_ExplicitFileWins(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	writeConfig(t, opts.ConfigDirPath, "config.cue", `audit: jobs: 2`)
	opts.ConfigFilePath = writeConfig(t, t.TempDir(), "custom.cue", `audit: jobs: 9`)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Audit.Jobs != 9 {
		t.Errorf("Jobs = %d, want 9", cfg.Audit.Jobs)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "missing.cue")

	_, err := NewProvider().Load(context.Background(), opts)
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %v", err)
	}
	if ae.Issue != issue.ConfigLoadFailedId {
		t.Errorf("Issue = %d, want ConfigLoadFailedId", ae.Issue)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{name: "bad format", content: `audit: format: "xml"`, wantMsg: "audit.format"},
		{name: "unknown field", content: `bogus: 1`, wantMsg: "bogus"},
		{name: "negative jobs", content: `audit: jobs: -1`, wantMsg: "audit.jobs"},
		{name: "empty pattern", content: `bazel: target_patterns: [""]`, wantMsg: "bazel.target_patterns[0]"},
		{name: "syntax error", content: `audit: {`, wantMsg: "config.cue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := isolated(t)
			writeConfig(t, opts.ConfigDirPath, "config.cue", tt.content)

			_, _, err := loadWithOptions(context.Background(), opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("CCMETA_AUDIT_JOBS", "8")
	t.Setenv("CCMETA_BAZEL_FLAGS", "--config=ci")

	cfg, _, err := loadWithOptions(context.Background(), isolated(t))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Audit.Jobs != 8 || cfg.Bazel.Flags != "--config=ci" {
		t.Errorf("env not applied: jobs=%d flags=%q", cfg.Audit.Jobs, cfg.Bazel.Flags)
	}
}

func TestLoad_InvalidEnvironmentOverride(t *testing.T) {
	t.Setenv("CCMETA_UI_COLOR_SCHEME", "purple")

	_, _, err := loadWithOptions(context.Background(), isolated(t))
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, ErrInvalidColorScheme) {
		t.Errorf("expected invalid color scheme, got %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := loadWithOptions(ctx, isolated(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.Bazel.Flags = `--copt="-DX=1"`
	want.Audit.Jobs = 3
	want.UI.Verbose = true

	opts := isolated(t)
	writeConfig(t, opts.ConfigDirPath, "config.cue", GenerateCUE(want))

	got, _, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	path, created, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if !created || path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q, created = %v", path, created)
	}

	if err := os.WriteFile(path, []byte("audit: jobs: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, created, err = CreateDefaultConfig(dir); err != nil || created {
		t.Errorf("second call: created = %v, err = %v", created, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "audit: jobs: 5\n" {
		t.Error("existing config was overwritten")
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := map[string][]string{
		"":                         nil,
		"audit":                    {"audit"},
		"bazel.target_patterns[0]": {"bazel", "target_patterns", "0"},
		"0":                        {"0"},
	}
	for want, in := range tests {
		if got := formatPath(in); got != want {
			t.Errorf("formatPath(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := checkFileSize(make([]byte, 10), 10, "a.cue"); err != nil {
		t.Errorf("unexpected error at limit: %v", err)
	}
	if err := checkFileSize(make([]byte, 11), 10, "a.cue"); err == nil {
		t.Error("expected error over limit")
	}
}
