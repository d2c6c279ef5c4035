package main

import (
	"os"

	"github.com/arthur-debert/kibank/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
