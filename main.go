// main is the entry point for the cohort CLI.
package main

import (
	"github.com/huangsam/cohort/cmd"
	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	cmd.SetStoreManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseStores()
		contract.LogFatal("Error starting CLI", err)
	}
}
