// Command sonicctl manages address and service objects on SonicOS firewalls
// through the REST configuration API.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/RiskIdent/sonicapi/pkg/sonicos"
)

// version is set via ldflags at build time: -ldflags="-X main.version=1.0.0"
var version = "dev"

func main() {
	a := newApp()
	root := newRootCmd(a)
	err := root.Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for a missing or already existing object and 1 for any
// other failure.
func exitCode(err error) int {
	if errors.Is(err, sonicos.ErrNotFound) || errors.Is(err, sonicos.ErrConflict) {
		return 2
	}
	return 1
}
