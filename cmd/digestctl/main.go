// Command digestctl condenses per-user location event streams into
// digests and reports observation-window statistics.
package main

import (
	"fmt"
	"os"

	"github.com/xcawolfe-amzn/digestctl/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
