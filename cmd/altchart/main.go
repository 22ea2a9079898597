package main

import (
	"os"

	"github.com/rustyeddy/altchart/cmd/altchart/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
