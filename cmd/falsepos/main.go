package main

import (
	"os"

	"falsepos/cmd/falsepos/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
