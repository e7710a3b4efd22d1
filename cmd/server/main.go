package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "Server-rendered blog",
	Long: `A server-rendered blog with registration, admin-only posting,
sanitized comments, a read-only JSON API and a contact form relay.

Configuration is read from the environment and an optional .env file.

Subcommands:
  serve    - Run the HTTP server
  migrate  - Apply, roll back or inspect schema migrations`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
