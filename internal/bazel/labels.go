// SPDX-License-Identifier: MPL-2.0

package bazel

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultLabelCacheSize bounds the number of resolved labels kept.
	DefaultLabelCacheSize = 4096
	// DefaultQueryAttempts is how many times a label query is tried.
	DefaultQueryAttempts = 3

	queryBackoff = 250 * time.Millisecond
)

// LabelResolver canonicalizes target labels through the build tool's query
// command. Results, including fallbacks, are cached for the resolver's life.
type LabelResolver struct {
	client   *Client
	cache    *lru.Cache[string, string]
	attempts int
	backoff  time.Duration
}

// NewLabelResolver creates a resolver backed by client. Non-positive size and
// attempts fall back to the package defaults.
func NewLabelResolver(client *Client, size, attempts int) (*LabelResolver, error) {
	if size <= 0 {
		size = DefaultLabelCacheSize
	}
	if attempts <= 0 {
		attempts = DefaultQueryAttempts
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &LabelResolver{client: client, cache: cache, attempts: attempts, backoff: queryBackoff}, nil
}

// Resolve returns the canonical form of label. When the query fails or prints
// nothing, label itself is returned and cached.
func (r *LabelResolver) Resolve(ctx context.Context, label string) string {
	if cached, ok := r.cache.Get(label); ok {
		return cached
	}

	resolved := label
	args := append([]string{"query", label}, quietFlags...)
	err := RetryWithBackoff(ctx, r.attempts, r.backoff, func(int) (bool, error) {
		res, err := r.client.Run(ctx, args...)
		if err != nil {
			return false, err
		}
		if res.ExitCode != 0 {
			cmdErr := &CommandError{
				Args:     []string{r.client.binary, "query", label},
				ExitCode: res.ExitCode,
				Stderr:   strings.TrimSpace(string(res.Stderr)),
			}
			return IsTransientError(cmdErr), cmdErr
		}
		if out := strings.TrimSpace(string(res.Stdout)); out != "" {
			resolved = strings.Fields(out)[0]
		}
		return false, nil
	})
	if err != nil {
		r.client.logger.Warn("label query failed, keeping raw label", "label", label, "err", err)
	}

	r.cache.Add(label, resolved)
	return resolved
}
