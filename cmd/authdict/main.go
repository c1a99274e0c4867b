// authdict generates a random batch of authenticated dictionary operations
// and replays it inside the zkvm, either executing it or proving it.
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"
)

var (
	ExecuteFlag = cli.BoolFlag{
		Name:  "execute",
		Usage: "execute the replay program and check its output",
	}
	ProveFlag = cli.BoolFlag{
		Name:  "prove",
		Usage: "prove the replay program and verify the proof",
	}
	LeavesFlag = cli.IntFlag{
		Name:  "leaves",
		Usage: "keys inserted before the batch starts",
		Value: 1,
	}
	OpsFlag = cli.IntFlag{
		Name:  "ops",
		Usage: "operations in the batch",
		Value: 100,
	}
	UpdateRatioFlag = cli.Float64Flag{
		Name:  "update-ratio",
		Usage: "probability of an operation being an update",
		Value: 0.7,
	}
	SeedFlag = cli.Int64Flag{
		Name:  "seed",
		Usage: "random seed, 0 seeds from the clock",
	}
	DBFlag = cli.StringFlag{
		Name:  "db",
		Usage: `node database as JSON, e.g. {"type": "leveldb", "options": {"file": "nodes"}}`,
	}
	BatchOutFlag = cli.StringFlag{
		Name:  "batch-out",
		Usage: "write the RLP encoded batch to this file",
	}
	ProofOutFlag = cli.StringFlag{
		Name:  "proof-out",
		Usage: "write the proof and verifying key to this file prefix",
	}
	DotOutFlag = cli.StringFlag{
		Name:  "dot-out",
		Usage: "write the final tree as a graphviz file",
	}
	ProgressFlag = cli.BoolFlag{
		Name:  "progress",
		Usage: "show a progress bar while generating the batch",
	}
	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "sets the verbosity level",
		Value: 3,
	}
	MetricsEnabledFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "collect metrics and print them on exit",
	}
)

var app = cli.NewApp()

func init() {
	app.Name = "authdict"
	app.Usage = "authenticated dictionary batch replay"
	app.Flags = []cli.Flag{
		ExecuteFlag,
		ProveFlag,
		LeavesFlag,
		OpsFlag,
		UpdateRatioFlag,
		SeedFlag,
		DBFlag,
		BatchOutFlag,
		ProofOutFlag,
		DotOutFlag,
		ProgressFlag,
		VerbosityFlag,
		MetricsEnabledFlag,
	}
	app.Action = runCmd
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
