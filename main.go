package main

import (
	"os"

	"github.com/foomo/portfolio-mcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
