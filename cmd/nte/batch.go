package main

import (
	"fmt"
	"os"

	"github.com/julien-sobczak/the-noteexporter/internal/core"
	"github.com/julien-sobczak/the-noteexporter/pkg/console"
	"github.com/spf13/cobra"
)

var batchPresetName string
var assumeYes bool

func init() {
	batchCmd.Flags().StringVarP(&batchPresetName, "preset", "p", "", "Preset to use (see nte presets)")
	batchCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Export all notes of a directory",
	Long:  `Export every note under a directory (default to the whole vault) except the ones excluded by .nteignore.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exporter := mustNewExporter(batchPresetName)

		dir := ""
		if len(args) > 0 {
			var err error
			dir, err = exporter.RelativePath(args[0])
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}
		notes, err := exporter.ListNotes(dir)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if len(notes) == 0 {
			fmt.Println("Nothing to export")
			return
		}

		if !assumeYes && !Confirm(fmt.Sprintf("Export %d note(s) using preset %s?", len(notes), exporter.Preset()), notes) {
			fmt.Println("Aborted")
			return
		}

		ctx, cancel := signalContext()
		defer cancel()
		progress := console.NewProgressLog(len(notes))
		_, err = exporter.ExportAll(ctx, notes, func(notePath string, result *core.ExportResult, err error) {
			if err != nil {
				progress.Fail(fmt.Sprintf("%s: %v", notePath, err))
				return
			}
			progress.Done(result.Summary())
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		failures := progress.Failures()
		progress.Clear(fmt.Sprintf("Exported %d note(s), %d failed", len(notes)-len(failures), len(failures)))
		for _, failure := range failures {
			fmt.Println(failure)
		}
		if len(failures) > 0 {
			os.Exit(1)
		}
	},
}
