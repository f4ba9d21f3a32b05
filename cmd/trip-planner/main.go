// cmd/trip-planner/main.go
package main

import (
	"os"

	"trip-planner/internal/common/output"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}
