// cmd/trip-planner/worker.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/spf13/cobra"

	"trip-planner/internal/common/camunda"
	"trip-planner/internal/common/config"
	"trip-planner/internal/server"
	destinationinfo "trip-planner/internal/workers/travel/destination-info"
	plantrip "trip-planner/internal/workers/travel/plan-trip"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the plan-trip and destination-info Zeebe job workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, "trip-planner-worker")
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Camunda.BrokerAddress == "" {
				return fmt.Errorf("camunda.broker_address (ZEEBE_ADDRESS) is required")
			}
			zeebe, err := camunda.NewClient(ctx, a.cfg.Camunda.BrokerAddress, config.GetDuration(a.cfg.Camunda.RequestTimeout))
			if err != nil {
				return err
			}
			defer zeebe.Close()
			a.log.Info("Zeebe client connected successfully", map[string]interface{}{
				"broker": a.cfg.Camunda.BrokerAddress,
			})

			var workers []*camunda.Worker
			if config.IsWorkerEnabled(a.cfg, plantrip.TaskType) {
				workers = append(workers, startWorker(a, zeebe, plantrip.TaskType, a.planner.Handle))
			}
			if config.IsWorkerEnabled(a.cfg, destinationinfo.TaskType) {
				workers = append(workers, startWorker(a, zeebe, destinationinfo.TaskType, a.destinations.Handle))
			}
			if len(workers) == 0 {
				return fmt.Errorf("no workers enabled")
			}
			defer func() {
				for _, w := range workers {
					w.Stop()
				}
			}()

			srv := server.New(&server.Config{
				Address:        a.cfg.Server.Address,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
			}, a.planner, zeebe.HealthCheck, a.log)

			return runServer(ctx, srv, a.log)
		},
	}
}

func startWorker(a *app, zeebe *camunda.Client, taskType string, handler func(worker.JobClient, entities.Job)) *camunda.Worker {
	wcfg := config.GetWorkerConfig(a.cfg, taskType)
	return camunda.StartWorker(zeebe.GetClient(), taskType, camunda.WorkerConfig{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       config.GetDuration(wcfg.Timeout),
	}, handler, a.log)
}
