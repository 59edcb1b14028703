// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by the ccmeta tests: fixture
// files that fail the test on error (MustWriteFile, MustReadFile) and a
// recorder that stands in for external processes (CommandRecorder) using
// the TestHelperProcess pattern.
package testutil
