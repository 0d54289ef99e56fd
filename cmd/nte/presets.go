package main

import (
	"fmt"

	"github.com/julien-sobczak/the-noteexporter/internal/core"
	"github.com/julien-sobczak/the-noteexporter/internal/format"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(formatsCmd)
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List presets",
	Long:  `List the presets defined in .nte/config.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, preset := range core.CurrentConfig().ConfigFile.Presets {
			fmt.Printf("%-12s %-6s %s\n", preset.Name, preset.Format, preset.OutputDir)
		}
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported formats",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range format.All {
			media := ""
			if f.SupportsMedia() {
				media = "(video, audio)"
			}
			fmt.Printf("%-6s %-5s %s\n", f, f.Extension(), media)
		}
	},
}
