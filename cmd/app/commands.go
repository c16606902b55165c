package main

import (
	"slices"

	"github.com/urfave/cli/v3"
)

func getCommands(version string) []*cli.Command {
	return slices.Concat(
		withCategory("system", getSystemCommands(version)),
		withCategory("capability tokens", getTokenCommands()),
	)
}

// withCategory groups cmds under category in the help output.
func withCategory(category string, cmds []*cli.Command) []*cli.Command {
	for _, cmd := range cmds {
		cmd.Category = category
	}
	return cmds
}
