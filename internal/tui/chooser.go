// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/ccmeta/ccmeta/internal/audit"
)

const (
	// Option values that cannot collide with a target label.
	skipValue  = "\x00skip"
	otherValue = "\x00other"
)

// ErrInvalidLabel is returned by the label prompt validator for input that
// does not look like a target label.
var ErrInvalidLabel = errors.New("expected a label such as //pkg:name or @repo//pkg:name")

// Chooser asks the user which dependency should provide a symbol. It
// satisfies fixer.Chooser.
type Chooser struct {
	cfg Config
}

// NewChooser creates a Chooser that renders prompts with cfg.
func NewChooser(cfg Config) *Chooser {
	return &Chooser{cfg: cfg}
}

// Choose prompts for the provider of sym in target. With several options it
// offers a list plus "skip" and "other"; with none it asks for a label
// directly. An empty answer or "skip" returns "". Aborting the prompt returns
// huh.ErrUserAborted.
func (c *Chooser) Choose(ctx context.Context, target audit.Target, sym audit.Symbol, options []audit.Target) (audit.Target, error) {
	if len(options) == 0 {
		return c.askLabel(ctx, fmt.Sprintf("No target exports %s. Enter a label for %s (blank to skip)", sym, target))
	}

	var picked string
	sel := huh.NewSelect[string]().
		Title(fmt.Sprintf("%s includes %s", target, sym)).
		Description("Choose the dependency that provides it").
		Options(selectOptions(options)...).
		Value(&picked)

	if err := newForm(c.cfg, sel).RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("choose provider of %s: %w", sym, err)
	}

	switch picked {
	case skipValue, "":
		return "", nil
	case otherValue:
		return c.askLabel(ctx, fmt.Sprintf("Label providing %s (blank to skip)", sym))
	default:
		return audit.Target(picked), nil
	}
}

func (c *Chooser) askLabel(ctx context.Context, title string) (audit.Target, error) {
	var label string
	in := huh.NewInput().
		Title(title).
		Validate(validateLabel).
		Value(&label)

	if err := newForm(c.cfg, in).RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("read label: %w", err)
	}
	return audit.Target(strings.TrimSpace(label)), nil
}

// selectOptions lists the candidates followed by the skip and other entries.
func selectOptions(options []audit.Target) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(options)+2)
	for _, opt := range options {
		out = append(out, huh.NewOption(string(opt), string(opt)))
	}
	return append(out,
		huh.NewOption("skip", skipValue),
		huh.NewOption("other…", otherValue),
	)
}

// validateLabel accepts blank input and absolute, repository or package
// relative labels.
func validateLabel(s string) error {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil
	case strings.ContainsAny(s, " \t"):
		return ErrInvalidLabel
	case strings.HasPrefix(s, "//"), strings.HasPrefix(s, "@"), strings.HasPrefix(s, ":"):
		return nil
	default:
		return ErrInvalidLabel
	}
}
