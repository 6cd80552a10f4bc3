package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/shopcrawl/internal/config"
	"github.com/IshaanNene/shopcrawl/internal/training"
)

type splitFlags struct {
	input     string
	outputDir string
	train     float64
	dev       float64
	seed      int64
}

// splitCmd creates the "split" subcommand.
func splitCmd() *cobra.Command {
	f := &splitFlags{}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split labelled JSONL into train, dev and test sets",
		Long: `Partition labelled examples per label: ceil(n*train) go to train, ceil(n*dev)
to dev and the rest to test. Each partition is shuffled before it is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(cfg *config.Config) { f.apply(cmd, cfg) })
			if err != nil {
				return err
			}
			return runSplit(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&f.input, "input", "i", "", "labelled JSONL input")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "directory for train.jsonl, dev.jsonl and test.jsonl")
	cmd.Flags().Float64Var(&f.train, "train", 0, "training ratio")
	cmd.Flags().Float64Var(&f.dev, "dev", 0, "development ratio")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "shuffle seed (0 = random)")

	return cmd
}

func (f *splitFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("input") {
		cfg.Split.InputPath = f.input
	}
	if set("output-dir") {
		cfg.Split.OutputDir = f.outputDir
	}
	if set("train") {
		cfg.Split.TrainRatio = f.train
	}
	if set("dev") {
		cfg.Split.DevRatio = f.dev
	}
	if set("seed") {
		cfg.Split.Seed = f.seed
	}
}

func runSplit(cmd *cobra.Command, cfg *config.Config) error {
	logger := setupLogger(cfg.Logging)

	examples, err := training.ReadExamplesFile(cfg.Split.InputPath)
	if err != nil {
		return err
	}

	rng := training.NewRand(cfg.Split.Seed)
	parts := training.Split(examples, cfg.Split.TrainRatio, cfg.Split.DevRatio, rng)
	if err := training.WriteSplits(cfg.Split.OutputDir, parts); err != nil {
		return err
	}

	logger.Info("dataset split",
		"input", cfg.Split.InputPath,
		"examples", len(examples),
		"train", len(parts.Train),
		"dev", len(parts.Dev),
		"test", len(parts.Test),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Train: %d, Dev: %d, Test: %d (written to %s)\n",
		len(parts.Train), len(parts.Dev), len(parts.Test), cfg.Split.OutputDir)
	return nil
}
