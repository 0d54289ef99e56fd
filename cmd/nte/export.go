package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/julien-sobczak/the-noteexporter/internal/core"
	"github.com/spf13/cobra"
)

var presetName string
var dryRun bool
var showDiff bool

func init() {
	exportCmd.Flags().StringVarP(&presetName, "preset", "p", "", "Preset to use (see nte presets)")
	exportCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the output path and the attachments without writing files")
	exportCmd.Flags().BoolVarP(&showDiff, "diff", "d", false, "Show changes compared to the previous export")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <note>",
	Short: "Export a note",
	Long:  `Convert a note and copy its attachments using a preset.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exporter := mustNewExporter(presetName)
		core.CurrentConfig().DryRun = dryRun
		exporter.Diff = showDiff

		notePath, err := exporter.RelativePath(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		ctx, cancel := signalContext()
		defer cancel()
		result, err := exporter.Export(ctx, notePath)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if showDiff {
			printDiff(result.Patch)
		}
		if dryRun {
			fmt.Printf("Would write %s\n", result.OutputPath)
			for _, attachment := range result.Attachments {
				fmt.Printf("Would copy %s\n", attachment)
			}
			return
		}
		for _, attachment := range result.Attachments {
			if attachment.Err != nil {
				color.Red("✗ %s: %v", attachment, attachment.Err)
			}
		}
		fmt.Println(result.Summary())
	},
}

// mustNewExporter asks for the preset when missing.
func mustNewExporter(name string) *core.Exporter {
	config := core.CurrentConfig()
	if name == "" {
		name = ChoosePreset(config.ConfigFile.Presets)
		if name == "" {
			os.Exit(1)
		}
	}
	exporter, err := core.NewExporter(config, name, core.NewConsoleNotifier())
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return exporter
}
