package main

import (
	"flag"
	"fmt"
	"os"
)

type AppFlags struct {
	TargetsFile      string
	GlobalConfigFile string
	Mode             string
}

func ParseFlags() AppFlags {
	targetsFile := flag.String("targets", "", "Path to a text file with URLs to merge into the watch list before running.")
	targetsFileAlias := flag.String("t", "", "Alias for -targets")

	globalConfigFile := flag.String("config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("c", "", "Alias for -config")

	modeFlag := flag.String("mode", "", "Mode to run the tool: onetime or automated (overrides config file if set)")
	modeFlagAlias := flag.String("m", "", "Alias for -mode")

	flag.Parse()

	flags := AppFlags{}

	if *targetsFile != "" {
		flags.TargetsFile = *targetsFile
	} else if *targetsFileAlias != "" {
		flags.TargetsFile = *targetsFileAlias
	}

	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else if *globalConfigFileAlias != "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	if *modeFlag != "" {
		flags.Mode = *modeFlag
	} else if *modeFlagAlias != "" {
		flags.Mode = *modeFlagAlias
	}

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "[FATAL] unexpected arguments: %v\n", flag.Args())
		os.Exit(2)
	}

	return flags
}
