// Package main provides the entry point for the recat CLI tool.
package main

import (
	"recat/cmd"
)

func main() {
	cmd.Execute()
}
