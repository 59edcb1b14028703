// SPDX-License-Identifier: MPL-2.0

// ccmeta audits C/C++ dependency declarations against observed includes.
package main

import cmd "github.com/ccmeta/ccmeta/cmd/ccmeta"

func main() {
	cmd.Execute()
}
