// SPDX-License-Identifier: MPL-2.0

package bazel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExecRoot returns the directory compile commands run in. It prefers the
// bazel-<workspace name> symlink under root, which follows the output base
// when it moves, then the absolute execution root, then root itself.
func (c *Client) ExecRoot(ctx context.Context, root string) string {
	name, err := c.info(ctx, "workspace")
	if err == nil {
		link := filepath.Join(root, "bazel-"+filepath.Base(name))
		if isDir(link) {
			return link
		}
		c.logger.Warn("workspace execution root symlink is missing, using the output base path", "path", link)
	} else {
		c.logger.Warn("reading the workspace name failed", "err", err)
	}

	abs, err := c.info(ctx, "execution_root")
	if err == nil {
		if isDir(abs) {
			return abs
		}
		c.logger.Warn("execution root does not exist, using the workspace root", "path", abs)
	} else {
		c.logger.Warn("reading the execution root failed", "err", err)
	}
	return root
}

func (c *Client) info(ctx context.Context, key string) (string, error) {
	res, err := c.Run(ctx, "info", key)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &CommandError{
			Args:     []string{c.binary, "info", key},
			ExitCode: res.ExitCode,
			Stderr:   strings.TrimSpace(string(res.Stderr)),
		}
	}
	out := strings.TrimSpace(string(res.Stdout))
	if out == "" {
		return "", fmt.Errorf("%s info %s printed nothing", c.binary, key)
	}
	return out, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
