// cmd/trip-planner/activities.go
package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trip-planner/internal/common/config"
	"trip-planner/internal/common/output"
	destinationinfo "trip-planner/internal/workers/travel/destination-info"
	plantrip "trip-planner/internal/workers/travel/plan-trip"
	"trip-planner/pkg/registry"
)

func newActivitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activities",
		Short: "List the job types the worker command serves",
		RunE: func(cmd *cobra.Command, args []string) error {
			timeouts := map[string]time.Duration{}
			if cfg, err := loadConfig(cmd.Context()); err == nil {
				for _, taskType := range []string{plantrip.TaskType, destinationinfo.TaskType} {
					if config.IsWorkerEnabled(cfg, taskType) {
						timeouts[taskType] = config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
					}
				}
			} else {
				output.Warn("configuration not loaded, timeouts omitted: %v", err)
			}

			reg := registry.Builtin(timeouts)
			r := renderer(cmd)
			if r.Format() != output.FormatText {
				return r.Encode(reg)
			}

			rows := make([][]string, 0, len(reg.Activities))
			for _, a := range reg.Activities {
				rows = append(rows, []string{a.TaskType, a.DisplayName, a.Timeout, strings.Join(a.ErrorCodes, ",")})
			}
			output.NewTextTable("Activities", []string{"TASK TYPE", "NAME", "TIMEOUT", "ERROR CODES"}, rows).Render(cmd.OutOrStdout())
			return nil
		},
	}
}
