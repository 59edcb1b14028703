// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
	"testing"
)

const helperEnv = "GO_WANT_HELPER_PROCESS"

type (
	// Response is the scripted outcome of one helper process run.
	Response struct {
		Stdout   string
		Stderr   string
		ExitCode int
	}

	// Invocation is one recorded call to a CommandRecorder's exec function.
	Invocation struct {
		Name string
		Args []string
	}

	// CommandRecorder replaces process creation with the calling test
	// binary's TestHelperProcess. Responses are consumed in order; once
	// exhausted, Default is used. Respond, when set, takes precedence and
	// answers based on the invocation.
	CommandRecorder struct {
		mu          sync.Mutex
		Invocations []Invocation
		Responses   []Response
		Default     Response
		Respond     func(name string, args []string) Response
	}
)

// NewCommandRecorder creates a recorder that answers with responses in order.
func NewCommandRecorder(responses ...Response) *CommandRecorder {
	return &CommandRecorder{Responses: responses}
}

// CommandFunc returns an exec function with the signature of
// exec.CommandContext. The package under test must define a
// TestHelperProcess that calls RunHelperProcess.
func (m *CommandRecorder) CommandFunc(t testing.TB) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	t.Helper()
	return func(_ context.Context, name string, args ...string) *exec.Cmd {
		m.mu.Lock()
		m.Invocations = append(m.Invocations, Invocation{Name: name, Args: slices.Clone(args)})
		resp := m.Default
		switch {
		case m.Respond != nil:
			resp = m.Respond(name, args)
		case len(m.Responses) > 0:
			resp, m.Responses = m.Responses[0], m.Responses[1:]
		}
		m.mu.Unlock()

		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		//nolint:gosec // TestHelperProcess is a test-only pattern
		cmd := exec.Command(os.Args[0], cs...) //nolint:noctx // exec.Command used intentionally for test helper
		cmd.Env = []string{
			helperEnv + "=1",
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", resp.ExitCode),
			"GO_HELPER_STDOUT=" + resp.Stdout,
			"GO_HELPER_STDERR=" + resp.Stderr,
		}
		return cmd
	}
}

// Count returns the number of recorded invocations.
func (m *CommandRecorder) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Invocations)
}

// Calls returns a copy of the recorded invocations.
func (m *CommandRecorder) Calls() []Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Invocations)
}

// LastArgs returns the arguments of the most recent invocation.
func (m *CommandRecorder) LastArgs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Invocations) == 0 {
		return nil
	}
	return m.Invocations[len(m.Invocations)-1].Args
}

// AssertArgsContainAll fails the test unless the last invocation carried
// every expected argument.
func (m *CommandRecorder) AssertArgsContainAll(t testing.TB, expected ...string) {
	t.Helper()
	args := m.LastArgs()
	for _, exp := range expected {
		if !slices.Contains(args, exp) {
			t.Errorf("expected args to contain %q, got: %s", exp, strings.Join(args, " "))
		}
	}
}

// RunHelperProcess plays back the scripted response when the test binary
// was started by a CommandRecorder, then exits. Otherwise it returns
// immediately.
func RunHelperProcess() {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	if stdout := os.Getenv("GO_HELPER_STDOUT"); stdout != "" {
		fmt.Fprint(os.Stdout, stdout)
	}
	if stderr := os.Getenv("GO_HELPER_STDERR"); stderr != "" {
		fmt.Fprint(os.Stderr, stderr)
	}
	exitCode := 0
	if code := os.Getenv("GO_HELPER_EXIT_CODE"); code != "" {
		fmt.Sscanf(code, "%d", &exitCode)
	}
	os.Exit(exitCode)
}
