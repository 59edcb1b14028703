// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandPaths resolves each argument to a list of files. Arguments containing
// glob metacharacters are expanded with doublestar semantics ("**" matches any
// number of directories) and their matches sorted; other arguments must name
// an existing file. The result keeps argument order and drops duplicates.
func ExpandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		if !hasMeta(arg) {
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("stat %s: %w", arg, err)
			}
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%q: %w", arg, ErrNoMatch)
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

func hasMeta(p string) bool {
	for i := range len(p) {
		switch p[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
