package cmd

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/laundry-sim/laundry-sim/sim"
	"github.com/laundry-sim/laundry-sim/sim/forecast"
	"github.com/laundry-sim/laundry-sim/sim/label"
	"github.com/laundry-sim/laundry-sim/store"
)

var (
	trainConfigPath string     // Training YAML file
	trainSlots      slotSource // Slot table location
	trainRecords    string     // Usage records CSV; trains a live model per tick
	trainPolicy     string     // Label policy of the slot table
	trainTrees      int        // Forest size
	trainSeed       int64      // Split and forest seed
	modelPath       string     // Model artifact
)

// trainCmd fits the congestion classifier and writes its artifact
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the congestion forecast model on a slot table",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadTrainConfig(trainConfigPath)
		if err != nil {
			logrus.Fatalf("Failed to load training config: %v", err)
		}
		if cmd.Flags().Changed("label") {
			cfg.Policy = label.Policy(trainPolicy)
		}
		if cmd.Flags().Changed("trees") {
			cfg.Forest.Trees = trainTrees
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = trainSeed
			cfg.Forest.Seed = trainSeed
		}
		if trainRecords != "" {
			cfg.Policy = label.PolicyLive
			cfg.Features = append([]string(nil), forecast.RecordFeatures...)
			err = trainOnRecords(trainRecords, cfg, modelPath, os.Stdout)
		} else {
			err = train(cmd.Context(), trainSlots, cfg, modelPath, os.Stdout)
		}
		if err != nil {
			logrus.Fatalf("Training failed: %v", err)
		}
	},
}

func train(ctx context.Context, src slotSource, cfg forecast.TrainConfig, out string, w io.Writer) error {
	table, err := src.load(ctx)
	if err != nil {
		return err
	}
	art, eval, err := forecast.Train(table, cfg)
	if err != nil {
		return err
	}
	return saveModel(art, eval, out, w)
}

// trainOnRecords fits a live model on every tick of a records CSV.
func trainOnRecords(path string, cfg forecast.TrainConfig, out string, w io.Writer) error {
	records, err := readFile(path, sim.ReadRecordsCSV)
	if err != nil {
		return err
	}
	art, eval, err := forecast.TrainRecords(records, cfg)
	if err != nil {
		return err
	}
	return saveModel(art, eval, out, w)
}

func saveModel(art *forecast.Artifact, eval *forecast.Evaluation, out string, w io.Writer) error {
	eval.Print(w)
	if err := forecast.SaveArtifact(out, art); err != nil {
		return err
	}
	logrus.Infof("Saved %s model (%d classes) to %s", art.Policy, art.NumClasses, out)
	return nil
}

func init() {
	f := trainCmd.Flags()
	f.StringVar(&trainConfigPath, "config", "", "Training YAML config (defaults when empty)")
	f.StringVar(&trainRecords, "records", "", "Train a live model on every tick of a usage records CSV instead of a slot table")
	f.StringVar(&trainSlots.Path, "slots", "slots.csv", "Slot table CSV")
	f.StringVar(&trainSlots.DSN, "postgres-dsn", "", "Read the slot table from Postgres instead of CSV")
	f.StringVar(&trainSlots.RunID, "run-id", "default", "Run identifier of stored slots")
	f.StringVar(&trainSlots.Table, "table", store.DefaultTable, "Postgres table name")
	f.StringVar(&trainPolicy, "label", string(label.PolicyHistorical), "Label policy the slot table was built with")
	f.IntVar(&trainTrees, "trees", forecast.DefaultForestConfig().Trees, "Number of trees")
	f.Int64Var(&trainSeed, "seed", 42, "Seed for the split and the forest")
	f.StringVar(&modelPath, "out", "model.json", "Output model artifact")
	rootCmd.AddCommand(trainCmd)
}
