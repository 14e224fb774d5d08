package main

import (
	"os"

	"github.com/daybreakhq/daybreak/adapter/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
