// Package main is the entry point for dupstat.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/idelchi/dupstat/internal/cli"
)

// Is set during build time.
var version = "unknown - unofficial & generated by unknown"

func main() {
	err := cli.New(version).Execute()
	if err == nil {
		return
	}

	code := cli.ExitFatal

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
	}

	if (exitErr == nil || !exitErr.Silent) && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}

	os.Exit(code)
}
