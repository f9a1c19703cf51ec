package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/laundry-sim/laundry-sim/sim/forecast"
	"github.com/laundry-sim/laundry-sim/store"
)

var (
	predictModel string                 // Model artifact
	predictDate  string                 // YYYY-MM-DD
	serving      forecast.ServingConfig // Serving-time features

	exportModel string     // Model artifact
	exportSlots slotSource // Slot table location
	reportPath  string     // Weekly report JSON
	redisURL    string     // Publish target
	reportTTL   time.Duration
)

// predictCmd prints the forecast of one day
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast hourly congestion for one date",
	Run: func(cmd *cobra.Command, args []string) {
		if predictDate == "" {
			predictDate = time.Now().Format(forecast.DateLayout)
		}
		if err := predict(predictModel, predictDate, serving, os.Stdout); err != nil {
			logrus.Fatalf("Prediction failed: %v", err)
		}
	},
}

func predict(model, date string, sc forecast.ServingConfig, w io.Writer) error {
	art, err := forecast.LoadArtifact(model)
	if err != nil {
		return err
	}
	p, err := forecast.NewArtifactPredictor(art, sc)
	if err != nil {
		return err
	}
	svc, err := forecast.NewService(forecast.DefaultMessages())
	if err != nil {
		return err
	}
	svc.Install(p)
	resp, err := svc.Forecast(date)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// exportCmd predicts every slot and writes or publishes the weekly report
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Build the weekly congestion report from a slot table",
	Run: func(cmd *cobra.Command, args []string) {
		if err := export(cmd.Context(), exportModel, exportSlots, reportPath, redisURL, reportTTL); err != nil {
			logrus.Fatalf("Export failed: %v", err)
		}
	},
}

func export(ctx context.Context, model string, src slotSource, out, redisURL string, ttl time.Duration) error {
	art, err := forecast.LoadArtifact(model)
	if err != nil {
		return err
	}
	table, err := src.load(ctx)
	if err != nil {
		return err
	}
	rep, err := forecast.BuildWeeklyReport(art.Forest, art.Features, art.Scale(), table)
	if err != nil {
		return err
	}
	if out != "" {
		err := writeFile(out, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		})
		if err != nil {
			return err
		}
		logrus.Infof("Wrote weekly report to %s", out)
	}
	if redisURL != "" {
		client, err := store.DialRedis(ctx, redisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := store.NewReportPublisher(client, ttl).Publish(ctx, rep); err != nil {
			return fmt.Errorf("publishing report: %w", err)
		}
	}
	return nil
}

func init() {
	predictCmd.Flags().StringVar(&predictModel, "model", "model.json", "Model artifact")
	predictCmd.Flags().StringVar(&predictDate, "date", "", "Date to forecast, YYYY-MM-DD (today when empty)")
	predictCmd.Flags().IntVar(&serving.RoomCode, "room-code", 0, "Room code feature")
	predictCmd.Flags().Float64Var(&serving.Last1h, "last-1h", 0, "Previous-hour usage feature")
	predictCmd.Flags().Float64Var(&serving.Last3h, "last-3h", 0, "Three-hour mean usage feature")
	rootCmd.AddCommand(predictCmd)

	f := exportCmd.Flags()
	f.StringVar(&exportModel, "model", "model.json", "Model artifact")
	f.StringVar(&exportSlots.Path, "slots", "slots.csv", "Slot table CSV")
	f.StringVar(&exportSlots.DSN, "postgres-dsn", "", "Read the slot table from Postgres instead of CSV")
	f.StringVar(&exportSlots.RunID, "run-id", "default", "Run identifier of stored slots")
	f.StringVar(&exportSlots.Table, "table", store.DefaultTable, "Postgres table name")
	f.StringVar(&reportPath, "out", "weekly_congestion.json", "Output report JSON (empty to skip)")
	f.StringVar(&redisURL, "redis-url", "", "Publish the report to Redis, e.g. redis://localhost:6379/0")
	f.DurationVar(&reportTTL, "ttl", 0, "Expiry of the stored report (0 keeps it)")
	rootCmd.AddCommand(exportCmd)
}
