package main

import (
	"os"

	"github.com/idilsaglam/checklist/internal/cli"
)

func main() {
	// Subcommands, flags and exit codes (0 ok, 1 error, 2 usage) live in cli.
	os.Exit(cli.Execute(os.Args[1:]))
}
