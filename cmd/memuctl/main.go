// Package main implements the memuctl CLI, the entry points the agent
// shell invokes. Each command reads one JSON request from stdin and
// writes one JSON response to stdout; logs go to stderr.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "memuctl",
	Short: "Long-term memory operations for the agent",
	Long: `memuctl memorizes and retrieves user memories backed by a vector store.

Each command speaks JSON over stdin/stdout:

  echo '{"content": "我对花生过敏"}' | memuctl memorize --auto
  echo '{"query": "allergies", "limit": 3}' | memuctl retrieve

A successful call exits 0 with {"success": true, ...}; any failure
exits 1 with {"success": false, "error": {"code": ..., "message": ...}}.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(memorizeCmd)
	rootCmd.AddCommand(retrieveCmd)
	rootCmd.AddCommand(triggersCmd)
}
