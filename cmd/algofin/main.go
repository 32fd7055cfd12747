package main

import (
	"os"

	"github.com/eric-ycw/algofin/cmd/algofin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
