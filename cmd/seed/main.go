package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/whodunit/cmd/seed/casefile"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(casefile.Group)
	rootCmd.AddCommand(casefile.Seed)
	rootCmd.AddCommand(casefile.Export)
}

var rootCmd = &cobra.Command{
	Use:  "whodunit-seed",
	Long: `Case-file utilities for whodunit https://github.com/myrjola/whodunit`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
