// Command codesage is the CodeSage client CLI.
package main

import (
	"github.com/codesage/codesage/cmd"
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()
	if err := cmd.Execute(); err != nil {
		iocache.CloseCaching()
		contract.LogFatal("Error", err)
	}
}
