package main

import (
	"os"

	"github.com/shipmind-ai/shipmind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
