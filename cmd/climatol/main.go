// main is the entry point for the climatol CLI.
package main

import (
	"fmt"
	"os"

	"github.com/polarcap/climatol/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
