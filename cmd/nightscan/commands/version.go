package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set via -ldflags "-X github.com/quantoak/nightscan/cmd/nightscan/commands.buildVersion=..."
var buildVersion = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the nightscan build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nightscan %s\n", buildVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
