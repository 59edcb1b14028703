// SPDX-License-Identifier: MPL-2.0

package bazel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// WorkspaceEnv is set by the build tool's run command to the workspace root.
const WorkspaceEnv = "BUILD_WORKSPACE_DIRECTORY"

// ErrWorkspaceNotFound is returned when no workspace root can be determined.
var ErrWorkspaceNotFound = errors.New("workspace root not found")

// WorkspaceRoot returns override when set, otherwise the value of
// WorkspaceEnv. The result must name an existing directory.
func WorkspaceRoot(override string) (string, error) {
	root := override
	if root == "" {
		root = os.Getenv(WorkspaceEnv)
	}
	if root == "" {
		return "", fmt.Errorf("%w: pass --workspace or run under the build tool (%s unset)", ErrWorkspaceNotFound, WorkspaceEnv)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWorkspaceNotFound, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrWorkspaceNotFound, abs)
	}
	return abs, nil
}
