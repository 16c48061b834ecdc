package main

import (
	"os"

	"github.com/cbsthiago-dev/progbunker-application/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
