// cmd/trip-planner/wiki.go
package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"trip-planner/internal/common/output"
	plantrip "trip-planner/internal/workers/travel/plan-trip"
)

func newWikiCmd() *cobra.Command {
	var (
		prompt   string
		remote   bool
		endpoint string
		arn      string
	)

	cmd := &cobra.Command{
		Use:   "wiki [destination...]",
		Short: "Look up encyclopedia info for destinations",
		Example: `  trip-planner wiki Pune Goa
  trip-planner wiki --prompt "Mumbai to Singapore and then Bali"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && prompt == "" {
				return fmt.Errorf("give destinations as arguments or a --prompt to infer them from")
			}

			a, err := newApp(cmd.Context(), "trip-planner-cli")
			if err != nil {
				return err
			}
			defer a.close()

			payload := map[string]interface{}{"mode": plantrip.ModeWiki, "prompt": prompt}
			var destinations interface{}
			if len(args) > 0 {
				destinations = lo.ToAnySlice(args)
				payload["destinations"] = destinations
			}

			var result map[string]interface{}
			if remote || endpoint != "" || arn != "" {
				client, err := a.runtimeClient(cmd.Context(), endpoint, arn)
				if err != nil {
					return err
				}
				output.Info("Session: %s", client.SessionID())
				result = asResult(client.Invoke(cmd.Context(), payload))
			} else {
				result = a.planner.Invoke(cmd.Context(), &plantrip.Input{
					Prompt:       prompt,
					Mode:         plantrip.ModeWiki,
					Destinations: destinations,
				})
			}

			return renderer(cmd).Render(result)
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "infer destinations from this travel request")
	cmd.Flags().BoolVar(&remote, "remote", false, "invoke the configured runtime instead of looking up locally")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "runtime base URL of a local serve process; implies --remote")
	cmd.Flags().StringVar(&arn, "arn", "", "Bedrock AgentCore runtime ARN; implies --remote")
	return cmd
}
