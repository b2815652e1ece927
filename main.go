// main is the entry point for the debrief CLI.
package main

import (
	"github.com/huangsam/debrief/cmd"
	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
