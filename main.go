// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/importctl/importctl/cmd/importctl"

func main() {
	cmd.Execute()
}
