// cmd/trip-planner/adapters.go
package main

import (
	"trip-planner/internal/agent"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/runtime"
	"trip-planner/internal/wiki"
	destinationinfo "trip-planner/internal/workers/travel/destination-info"
	plantrip "trip-planner/internal/workers/travel/plan-trip"
)

// Each package declares its own Logger whose With returns that package's
// type; these adapters bridge the shared logger to them.

type agentLoggerAdapter struct {
	logger.Logger
}

func (a *agentLoggerAdapter) With(fields map[string]interface{}) agent.Logger {
	return &agentLoggerAdapter{a.Logger.With(fields)}
}

type wikiLoggerAdapter struct {
	logger.Logger
}

func (a *wikiLoggerAdapter) With(fields map[string]interface{}) wiki.Logger {
	return &wikiLoggerAdapter{a.Logger.With(fields)}
}

type destinationInfoLoggerAdapter struct {
	logger.Logger
}

func (a *destinationInfoLoggerAdapter) With(fields map[string]interface{}) destinationinfo.Logger {
	return &destinationInfoLoggerAdapter{a.Logger.With(fields)}
}

type planTripLoggerAdapter struct {
	logger.Logger
}

func (a *planTripLoggerAdapter) With(fields map[string]interface{}) plantrip.Logger {
	return &planTripLoggerAdapter{a.Logger.With(fields)}
}

type runtimeLoggerAdapter struct {
	logger.Logger
}

func (a *runtimeLoggerAdapter) With(fields map[string]interface{}) runtime.Logger {
	return &runtimeLoggerAdapter{a.Logger.With(fields)}
}
