package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use: "stitchup-api",
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
