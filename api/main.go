// @title webapp file service
// @version 1.0
// @description Stores files in S3 and their metadata in a relational database.

// @host localhost:8080
// @BasePath /
// @schemes http

package main

import (
	"fmt"
	"os"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := newRootCommand()

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newConfigCommand())
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
