package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "krapi",
	Short: "krapi content store admin tool",
	Example: `krapi schema create -p <project-id> -n <name> -f <fields-json>
krapi schema list -p <project-id>
krapi schema delete -p <project-id> -n <name>
krapi doc create -p <project-id> -t <table> -d <data-json>
krapi doc get -p <project-id> -t <table> -i <doc-id>
krapi doc list -p <project-id> -t <table>
krapi doc update -p <project-id> -t <table> -i <doc-id> -d <data-json>
krapi doc delete -p <project-id> -t <table> -i <doc-id>
krapi changelog list -p <project-id>`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
