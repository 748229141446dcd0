package main

import (
	"os"

	"newsreader/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
