// ABOUTME: Entry point for runlog CLI.
// ABOUTME: Invokes the root Cobra command and maps the outcome to an exit code.
package main

import "os"

func main() {
	os.Exit(Execute())
}
