// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the audit hot paths, used to
// generate PGO profiles:
//   - export index construction
//   - per-target resolution, sequential and parallel
//   - artifact decoding and report encoding
//
// To generate a profile, run:
//
//	go test -run='^$' -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
