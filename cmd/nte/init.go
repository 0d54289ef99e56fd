package main

import (
	"fmt"
	"os"

	"github.com/julien-sobczak/the-noteexporter/internal/core"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration",
	Long:  `Create .nte/config with the default presets and .nteignore in the current directory.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		config, err := core.InitConfigFromDirectory(cwd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Initialized configuration in %s with presets %v\n", config.RootDirectory, config.ConfigFile.PresetNames())
	},
}
