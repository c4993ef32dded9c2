package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "market-ai",
	Short: "A CLI for the Market AI signal intelligence services",
	Long:  `Market AI turns stored daily price history into scored trade signals, learned stop distances and a ranked weekly shortlist.`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
