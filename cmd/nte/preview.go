package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julien-sobczak/the-noteexporter/internal/core"
	"github.com/julien-sobczak/the-noteexporter/pkg/markdown"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var noBrowser bool

func init() {
	previewCmd.Flags().BoolVarP(&noBrowser, "no-browser", "", false, "Print the path of the HTML page instead of opening it")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <note>",
	Short: "Preview a note in the browser",
	Long:  `Export a note in a temporary directory and open it as an HTML page.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		outputDir, err := os.MkdirTemp("", "nte-preview")
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		exporter, err := core.NewPreviewExporter(core.CurrentConfig(), outputDir, core.NewConsoleNotifier())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
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

		title := strings.TrimSuffix(filepath.Base(notePath), filepath.Ext(notePath))
		page := strings.TrimSuffix(result.OutputPath, filepath.Ext(result.OutputPath)) + ".html"
		if err := os.WriteFile(page, []byte(markdown.ToHTMLPage(title, result.Content)), 0644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if noBrowser {
			fmt.Println(page)
			return
		}
		if err := browser.OpenFile(page); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}
