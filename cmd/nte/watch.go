package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/julien-sobczak/the-noteexporter/internal/core"
	"github.com/spf13/cobra"
)

var watchPresetName string

func init() {
	watchCmd.Flags().StringVarP(&watchPresetName, "preset", "p", "", "Preset to use (see nte presets)")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <note>",
	Short: "Export a note after each change",
	Long:  `Export a note, then export it again when the note, an embedded note or an attachment changes. Press Ctrl+C to stop.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exporter := mustNewExporter(watchPresetName)
		notePath, err := exporter.RelativePath(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		ctx, cancel := signalContext()
		defer cancel()
		err = exporter.Watch(ctx, notePath, func(notePath string, result *core.ExportResult, err error) {
			now := time.Now().Format(time.TimeOnly)
			if err != nil {
				color.Red("[%s] %v", now, err)
				return
			}
			fmt.Printf("[%s] %s\n", now, result.Summary())
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}
