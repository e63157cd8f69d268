package config

import (
	"fmt"
	"io"
	"os"
)

// exit is swapped in tests so Exitf can be exercised without terminating.
var exit = os.Exit

// stderr receives Exitf output.
var stderr io.Writer = os.Stderr

// Exitf writes a formatted error message to stderr and exits with code 1.
// It provides a consistent fatal-exit pattern for CLI entry points.
func Exitf(format string, args ...any) {
	fmt.Fprintf(stderr, format+"\n", args...)
	exit(1)
}
