// SPDX-License-Identifier: MPL-2.0

// Package bazel drives the external build tool: it discovers C/C++ targets,
// builds them with the metadata aspect, and picks the aspect's export and
// import artifacts out of the build output.
//
// All process creation goes through an injectable ExecCommandFunc so tests
// can substitute a helper process.
package bazel
