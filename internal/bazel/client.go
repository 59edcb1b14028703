// SPDX-License-Identifier: MPL-2.0

package bazel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// DefaultBinary is the build tool looked up on PATH when none is configured.
	DefaultBinary = "bazel"
	// DefaultAspect is the metadata aspect applied by Build.
	DefaultAspect = "@ccmeta//:aspect.bzl%cc_meta_aspect"
	// OutputGroup is the aspect output group holding the metadata artifacts.
	OutputGroup = "cc_meta"
)

// quietFlags silence progress and info output on every invocation.
var quietFlags = []string{"--ui_event_filters=-info", "--noshow_progress"}

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// ClientOption configures a Client.
	ClientOption func(*Client)

	// Client runs build tool commands in one workspace.
	Client struct {
		binary      string
		dir         string
		aspect      string
		flags       []string
		execCommand ExecCommandFunc
		logger      *log.Logger
	}

	// Result is the captured outcome of one build tool invocation.
	Result struct {
		Stdout   []byte
		Stderr   []byte
		ExitCode int
	}

	// CommandError is returned when the build tool exits with a nonzero code.
	CommandError struct {
		Args     []string
		ExitCode int
		Stderr   string
	}
)

// WithExecCommand overrides process creation.
func WithExecCommand(fn ExecCommandFunc) ClientOption {
	return func(c *Client) { c.execCommand = fn }
}

// WithDir sets the directory commands run in (the workspace root).
func WithDir(dir string) ClientOption {
	return func(c *Client) { c.dir = dir }
}

// WithAspect overrides the metadata aspect label.
func WithAspect(aspect string) ClientOption {
	return func(c *Client) { c.aspect = aspect }
}

// WithFlags appends user flags to every query and build.
func WithFlags(flags ...string) ClientOption {
	return func(c *Client) { c.flags = append(c.flags, flags...) }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client for binary. An empty binary means DefaultBinary.
func NewClient(binary string, opts ...ClientOption) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	c := &Client{
		binary:      binary,
		aspect:      DefaultAspect,
		execCommand: exec.CommandContext,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Run executes the build tool with args and captures its output. A nonzero
// exit is reported in Result.ExitCode with a nil error; err is non-nil only
// when the process could not be run at all.
func (c *Client) Run(ctx context.Context, args ...string) (Result, error) {
	cmd := c.execCommand(ctx, c.binary, args...)
	if c.dir != "" {
		cmd.Dir = c.dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("running build tool", "binary", c.binary, "args", args)
	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, fmt.Errorf("run %s: %w", c.binary, err)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}

// DiscoverTargets lists the C/C++ rules reachable from each pattern. Any
// query failure is fatal: without a target list there is nothing to audit.
func (c *Client) DiscoverTargets(ctx context.Context, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		args := []string{"cquery", fmt.Sprintf("kind('cc_.* rule',deps(%s))", pattern)}
		args = append(args, quietFlags...)
		args = append(args, c.flags...)

		res, err := c.Run(ctx, args...)
		if err != nil {
			return nil, err
		}
		if res.ExitCode != 0 {
			return nil, &CommandError{
				Args:     append([]string{c.binary}, args[:2]...),
				ExitCode: res.ExitCode,
				Stderr:   strings.TrimSpace(string(res.Stderr)),
			}
		}
		for _, line := range strings.Split(string(res.Stdout), "\n") {
			if fields := strings.Fields(line); len(fields) > 0 {
				seen[fields[0]] = true
			}
		}
	}

	targets := make([]string, 0, len(seen))
	for t := range seen {
		targets = append(targets, t)
	}
	slices.Sort(targets)
	c.logger.Info("discovered targets", "count", len(targets))
	return targets, nil
}
