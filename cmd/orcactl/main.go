package main

import (
	"fmt"
	"os"

	"OrcaBI/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.NewCLIApp(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
