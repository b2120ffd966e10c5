package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:               "appflow",
	Short:             "POS payment flow toolkit",
	Long:              `Runs the flow processing service with its sample flow and payment services, and initiates demo payments against it.`,
	DisableAutoGenTag: true,
	Version:           "1.0.0",
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(splitCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
