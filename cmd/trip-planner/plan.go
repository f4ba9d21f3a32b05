// cmd/trip-planner/plan.go
package main

import (
	"strings"

	"github.com/spf13/cobra"

	"trip-planner/internal/common/jsonsafe"
	"trip-planner/internal/common/output"
	plantrip "trip-planner/internal/workers/travel/plan-trip"
)

func newPlanCmd() *cobra.Command {
	var (
		remote   bool
		endpoint string
		arn      string
	)

	cmd := &cobra.Command{
		Use:   "plan [prompt]",
		Short: "Plan a trip from one prompt",
		Example: `  trip-planner plan "I want to go from Delhi to Pune for 3 nights, need a hotel with breakfast"
  trip-planner plan --remote "Goa for a long weekend" -o json
  trip-planner plan --arn arn:aws:bedrock-agentcore:us-east-1:123456789012:runtime/planner "Goa in March"
  trip-planner plan --endpoint http://localhost:8080 "Kochi in December"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")

			a, err := newApp(cmd.Context(), "trip-planner-cli")
			if err != nil {
				return err
			}
			defer a.close()

			var result map[string]interface{}
			if remote || endpoint != "" || arn != "" {
				client, err := a.runtimeClient(cmd.Context(), endpoint, arn)
				if err != nil {
					return err
				}
				output.Info("Session: %s", client.SessionID())
				result = asResult(client.Invoke(cmd.Context(), map[string]interface{}{"prompt": prompt}))
			} else {
				result = a.planner.Invoke(cmd.Context(), &plantrip.Input{Prompt: prompt})
			}

			return renderer(cmd).Render(result)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "invoke the configured runtime instead of planning locally")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "runtime base URL of a local serve process; implies --remote")
	cmd.Flags().StringVar(&arn, "arn", "", "Bedrock AgentCore runtime ARN; implies --remote")
	return cmd
}

// asResult turns a decoded runtime reply into a renderable object.
func asResult(reply any) map[string]interface{} {
	if m, ok := reply.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{"raw": jsonsafe.Coerce(reply)}
}
