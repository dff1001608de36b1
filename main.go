// main is the entry point for the codesight CLI.
package main

import (
	"github.com/codesight/codesight/cmd"
	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/internal/iocache"
)

func main() {
	defer iocache.CloseArchive()
	if err := cmd.Execute(); err != nil {
		iocache.CloseArchive()
		contract.LogFatal("Command failed", err)
	}
}
