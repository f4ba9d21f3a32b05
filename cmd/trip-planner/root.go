// cmd/trip-planner/root.go
package main

import (
	"github.com/spf13/cobra"

	"trip-planner/internal/common/output"
)

var (
	cfgFile      string
	outputFormat string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trip-planner",
		Short: "Travel planning runtime",
		Long: `trip-planner answers travel requests with a remote planning agent and
encyclopedia destination info.

Run it as an HTTP runtime (serve), as Zeebe job workers (worker), or ask it
directly from the terminal (plan, wiki).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := output.ParseFormat(outputFormat)
			return err
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/config.yaml)")
	root.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json, yaml")

	root.AddCommand(newServeCmd(), newWorkerCmd(), newPlanCmd(), newWikiCmd(), newActivitiesCmd())
	return root
}

func renderer(cmd *cobra.Command) *output.Renderer {
	format, _ := output.ParseFormat(outputFormat)
	return output.NewRenderer(cmd.OutOrStdout(), format)
}
