package main

import (
	"os"

	"github.com/basenana/graphdump/cmd/apps"
)

func main() {
	if err := apps.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
