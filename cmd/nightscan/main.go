package main

import (
	"os"

	"github.com/quantoak/nightscan/cmd/nightscan/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
