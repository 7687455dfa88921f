package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/flexprice/feeledger/scripts/internal"
)

type command struct {
	description string
	run         func() error
}

var commands = map[string]command{
	"resync-sequences": {
		description: "Raise invoice number counters to the highest stored number (PERIODS)",
		run:         internal.ResyncSequences,
	},
	"issue-token": {
		description: "Print a bearer token for an operator (USER_ID, CAMPUS_ID, TOKEN_TTL)",
		run:         internal.IssueToken,
	},
}

func main() {
	name := flag.String("cmd", "", "command to run")
	flag.Parse()

	cmd, ok := commands[*name]
	if !ok {
		usage()
		os.Exit(2)
	}

	if err := cmd.run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", *name, err)
		os.Exit(1)
	}
}

func usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(os.Stderr, "usage: go run scripts/main.go -cmd <command>")
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-18s %s\n", name, commands[name].description)
	}
}
