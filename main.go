package main

import (
	"fmt"
	"os"

	"github.com/avstrong/staybook/cmd"
)

func main() {
	var exitCode int

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "staybook: %v\n", err)

		exitCode = 1
	}

	os.Exit(exitCode)
}
