package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/Taraxa-project/taraxa-authdict/db"
	"github.com/Taraxa-project/taraxa-authdict/replay"
	"github.com/Taraxa-project/taraxa-authdict/tree"
	"github.com/Taraxa-project/taraxa-authdict/tree/batchgen"
	"github.com/Taraxa-project/taraxa-authdict/trie"
	"github.com/Taraxa-project/taraxa-authdict/zkvm"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"
)

var errMode = errors.New("you must specify either --execute or --prove")

func runCmd(ctx *cli.Context) error {
	glogger := log.NewGlogHandler(log.StreamHandler(os.Stderr, log.TerminalFormat(false)))
	glogger.Verbosity(log.Lvl(ctx.GlobalInt(VerbosityFlag.Name)))
	log.Root().SetHandler(glogger)

	execute, prove := ctx.GlobalBool(ExecuteFlag.Name), ctx.GlobalBool(ProveFlag.Name)
	if execute == prove {
		return errMode
	}
	if ctx.GlobalBool(MetricsEnabledFlag.Name) {
		defer metrics.WriteOnce(metrics.DefaultRegistry, os.Stderr)
	}
	out := ctx.App.Writer

	batch, err := generate(ctx)
	if err != nil {
		return err
	}
	log.Debug("Trie work", "hashes", trie.Hashes(), "resolves", trie.Resolves())
	client := zkvm.NewClient(zkvm.Config{})
	stdin := zkvm.NewStdin()
	if err := stdin.Write(batch); err != nil {
		return errors.Wrap(err, "write stdin")
	}
	if execute {
		return executeBatch(out, client, stdin, batch)
	}
	return proveBatch(out, client, stdin, ctx.GlobalString(ProofOutFlag.Name))
}

func generate(ctx *cli.Context) (*tree.Batch, error) {
	factory, err := db.Parse(ctx.GlobalString(DBFlag.Name))
	if err != nil {
		return nil, err
	}
	database, err := factory.NewInstance()
	if err != nil {
		return nil, errors.Wrap(err, "open node database")
	}
	defer database.Close()

	seed := ctx.GlobalInt64(SeedFlag.Name)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Info("Generating batch", "seed", seed, "leaves", ctx.GlobalInt(LeavesFlag.Name), "ops", ctx.GlobalInt(OpsFlag.Name))
	state := tree.NewState(database)
	gen := batchgen.New(rand.New(rand.NewSource(seed)))
	gen.UpdateRatio = ctx.GlobalFloat64(UpdateRatioFlag.Name)
	if ctx.GlobalBool(ProgressFlag.Name) {
		gen.Progress = os.Stderr
	}
	batch, err := gen.CreateBatch(state, ctx.GlobalInt(LeavesFlag.Name), ctx.GlobalInt(OpsFlag.Name))
	if err != nil {
		return nil, err
	}
	if _, err := state.Commit(); err != nil {
		return nil, err
	}
	if file := ctx.GlobalString(BatchOutFlag.Name); file != "" {
		enc, err := tree.EncodeBatch(batch)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(file, enc, 0644); err != nil {
			return nil, err
		}
		log.Info("Wrote batch", "file", file, "bytes", len(enc))
	}
	if file := ctx.GlobalString(DotOutFlag.Name); file != "" {
		if err := os.WriteFile(file, []byte(state.Dot().String()), 0644); err != nil {
			return nil, err
		}
	}
	return batch, nil
}

func executeBatch(out io.Writer, client *zkvm.Client, stdin *zkvm.Stdin, batch *tree.Batch) error {
	output, report, err := client.Execute(replay.Program{}, stdin)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Program executed successfully.")

	final_commitment := output.Hex()
	fmt.Fprintln(out, "final_commitment:", final_commitment)
	if expected := batch.NewRoot().Hex(); final_commitment != expected {
		return errors.Wrapf(tree.ErrRootMismatch, "final commitment %s, expected %s", final_commitment, expected)
	}
	fmt.Fprintln(out, "Values are correct!")
	fmt.Fprintln(out, report)
	return nil
}

func proveBatch(out io.Writer, client *zkvm.Client, stdin *zkvm.Stdin, prefix string) error {
	pk, vk, err := client.Setup(replay.Program{})
	if err != nil {
		return err
	}
	proof, err := client.Prove(pk, stdin)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Successfully generated proof!")
	if prefix != "" {
		if err := writeArtifacts(prefix, proof, vk); err != nil {
			return err
		}
	}
	if err := client.Verify(proof, vk); err != nil {
		return err
	}
	fmt.Fprintln(out, "Successfully verified proof!")
	return nil
}

func writeArtifacts(prefix string, proof *zkvm.ProofArtifact, vk *zkvm.VerifyingKey) error {
	enc, err := zkvm.EncodeProof(proof)
	if err != nil {
		return err
	}
	if err := os.WriteFile(prefix+".proof", enc, 0644); err != nil {
		return err
	}
	if enc, err = zkvm.EncodeVerifyingKey(vk); err != nil {
		return err
	}
	return os.WriteFile(prefix+".vk", enc, 0644)
}
