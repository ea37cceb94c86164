package main

import (
	"fmt"

	"github.com/NeuralTrust/banhammer/pkg/version"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.GetInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (%s, %s, built %s)\n",
				info.AppName, info.Version, info.GoVersion, info.Platform, info.BuildDate)
		},
	}
}
