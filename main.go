package main

import (
	"os"

	"github.com/fyp-labs/adaptive-learning-platform/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
