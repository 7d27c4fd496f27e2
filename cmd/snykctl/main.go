// Package main is the entry point for the snykctl binary.
package main

import (
	"os"

	"github.com/iamsuganthi/log-sniffer/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
