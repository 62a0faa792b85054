package main

import (
	"flag"
	"log"

	"infcheck/internal/di"
	"infcheck/internal/structures"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	debug := flag.Bool("debug", false, "log to console in human readable form")
	flag.Parse()

	flags := &structures.CliFlags{
		ConfigPath: *configPath,
		DebugMode:  *debug,
	}

	if _, err := di.InitApp(flags); err != nil {
		log.Fatalf("infcheck: %s", err)
	}
}
