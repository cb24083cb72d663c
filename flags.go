package main

import "github.com/urfave/cli/v2"

var FlagConfig = &cli.StringFlag{
	Name:     "config",
	Usage:    "path to the INI config file",
	EnvVars:  []string{"CONFIG"},
	Value:    "config.ini",
	Required: false,
}

var FlagLogLevel = &cli.StringFlag{
	Name:     "log-level",
	EnvVars:  []string{"LOG_LEVEL"},
	Value:    "info",
	Required: false,
}

var FlagLogWriter = &cli.StringFlag{
	Name:     "log-writer",
	Usage:    "one of: [console, json]",
	EnvVars:  []string{"LOG_WRITER"},
	Value:    "console",
	Required: false,
}
