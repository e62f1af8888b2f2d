// Command devsetup prepares a backend + frontend project for local development.
package main

import (
	"os"

	"github.com/NielsdaWheelz/devsetup/internal/cli"
	"github.com/NielsdaWheelz/devsetup/internal/errors"
)

func main() {
	err := cli.Run(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
