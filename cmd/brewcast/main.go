package main

import (
	"os"

	"github.com/diekoffieblik/brewcast/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
