package main

import (
	"flag"
	"fmt"
	"os"

	"heatmapd/internal/di"
	"heatmapd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the yaml config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "mirror logs to the console")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "heatmapd: %s\n", err)
		os.Exit(1)
	}
}
