package cmd

import (
	"os"

	"github.com/prodaudit/prodaudit/pkg/catalog"
	"github.com/spf13/cobra"
)

// fieldsCmd represents the fields command
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Print the attribute catalog as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return catalog.WriteYAML(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
