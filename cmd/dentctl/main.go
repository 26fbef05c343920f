package main

import (
	"os"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
