// Package main provides the openingtree CLI tool for reducing raw game
// dumps and building opening-tree datasets.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
