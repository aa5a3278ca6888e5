// Package main is the entry point for the sqlrun CLI application.
// It runs SQL scripts against PostgreSQL statement by statement.
package main

import (
	"sqlrun/cli/cmd"
)

// main is the entry point for the sqlrun CLI application.
func main() {
	cmd.Execute()
}
