// Command calcmv evaluates triple integrals and the theorems of Green,
// Gauss and Stokes from the command line, and serves the same evaluators
// over HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
