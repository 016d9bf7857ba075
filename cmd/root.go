package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nefconv",
	Short: "nefconv - batch convert camera raw files to JPEG",
	Long:  "nefconv converts a folder of NEF raw files to JPEG on a worker pool, with live previews and a clean abort.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
