// cmd/trip-planner/app.go
package main

import (
	"context"
	"fmt"

	"trip-planner/internal/agent"
	"trip-planner/internal/common/aws"
	"trip-planner/internal/common/config"
	"trip-planner/internal/common/llm"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/common/observability"
	"trip-planner/internal/runtime"
	"trip-planner/internal/wiki"
	destinationinfo "trip-planner/internal/workers/travel/destination-info"
	plantrip "trip-planner/internal/workers/travel/plan-trip"
)

// app holds the components shared by every command.
type app struct {
	cfg          *config.Config
	log          logger.Logger
	obs          *observability.Observability
	destinations *destinationinfo.Handler
	planner      *plantrip.Handler
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(ctx, cfgFile, aws.FetchSecret)
	}
	return config.Load(ctx, aws.FetchSecret)
}

func newApp(ctx context.Context, serviceName string) (*app, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format).With(map[string]interface{}{
		"service": serviceName,
		"version": cfg.App.Version,
	})
	obs := observability.New(serviceName, log)

	agentClient := agent.NewClient(&agent.Config{
		BaseURL:        cfg.Agent.BaseURL,
		Database:       cfg.Agent.Database,
		Schema:         cfg.Agent.Schema,
		Name:           cfg.Agent.Name,
		AuthToken:      cfg.Agent.AuthToken,
		ConnectTimeout: config.GetDuration(cfg.Agent.ConnectTimeout),
		ReadTimeout:    config.GetDuration(cfg.Agent.ReadTimeout),
	}, &agentLoggerAdapter{log})

	wikiClient := wiki.NewClient(&wiki.Config{
		BaseURL:   cfg.Wiki.BaseURL,
		UserAgent: cfg.Wiki.UserAgent,
		Timeout:   config.GetDuration(cfg.Wiki.Timeout),
	}, &wikiLoggerAdapter{log})

	generator := llm.NewClient(llm.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		Timeout:        config.GetDuration(cfg.LLM.Timeout),
		ConnectTimeout: config.GetDuration(cfg.Agent.ConnectTimeout),
	})

	destinations := destinationinfo.NewHandler(
		&destinationinfo.Config{
			Timeout: config.GetDuration(config.GetWorkerConfig(cfg, destinationinfo.TaskType).Timeout),
		},
		wikiClient, generator, &destinationInfoLoggerAdapter{log},
	)

	planner := plantrip.NewHandler(
		&plantrip.Config{
			Timeout: config.GetDuration(config.GetWorkerConfig(cfg, plantrip.TaskType).Timeout),
		},
		agentClient, destinations, obs, &planTripLoggerAdapter{log},
	)

	return &app{
		cfg:          cfg,
		log:          log,
		obs:          obs,
		destinations: destinations,
		planner:      planner,
	}, nil
}

// runtimeClient picks how to reach a deployed runtime. An explicit endpoint
// wins, then a runtime ARN (flag or config) through AgentCore, then the
// configured endpoint.
func (a *app) runtimeClient(ctx context.Context, endpoint, arn string) (runtime.Invoker, error) {
	rc := a.cfg.Runtime
	if endpoint == "" && arn == "" {
		arn = rc.ARN
	}
	if endpoint == "" && arn != "" {
		client, err := runtime.NewAgentCoreClient(ctx, &runtime.AgentCoreConfig{
			RuntimeARN:     arn,
			Region:         rc.Region,
			Qualifier:      rc.Qualifier,
			ConnectTimeout: config.GetDuration(rc.ConnectTimeout),
			ReadTimeout:    config.GetDuration(rc.ReadTimeout),
		}, &runtimeLoggerAdapter{a.log})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	if endpoint == "" {
		endpoint = rc.Endpoint
	}
	if endpoint == "" {
		return nil, fmt.Errorf("runtime.arn (AGENTCORE_RUNTIME_ARN), runtime.endpoint (AGENTCORE_ENDPOINT), --arn or --endpoint is required for remote invocations")
	}
	return runtime.NewClient(&runtime.Config{
		Endpoint:       endpoint,
		ConnectTimeout: config.GetDuration(rc.ConnectTimeout),
		ReadTimeout:    config.GetDuration(rc.ReadTimeout),
	}, &runtimeLoggerAdapter{a.log}), nil
}

func (a *app) close() {
	a.obs.Shutdown()
}
