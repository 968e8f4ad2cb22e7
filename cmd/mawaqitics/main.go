package main

import (
	"os"

	"mawaqitics/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
