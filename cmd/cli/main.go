package main

import (
	"os"

	"github.com/facilite-dev/facilite/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
