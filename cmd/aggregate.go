package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/laundry-sim/laundry-sim/sim"
	"github.com/laundry-sim/laundry-sim/sim/eventlog"
	"github.com/laundry-sim/laundry-sim/sim/slots"
	"github.com/laundry-sim/laundry-sim/store"
)

// aggregateOptions are the inputs of one aggregate run.
type aggregateOptions struct {
	Source string // occupancy or eventlog
	Input  string
	Policy string // live or historical
	Output string
	Rooms  slots.RoomIndex
	DSN    string
	RunID  string
	Table  string
}

var aggOpts aggregateOptions

// aggregateCmd builds the labeled slot table
var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate records or events into a labeled slot table",
	Run: func(cmd *cobra.Command, args []string) {
		rooms, err := loadRoomIndex(facilityConfigPath)
		if err != nil {
			logrus.Fatalf("Failed to load facility config: %v", err)
		}
		opts := aggOpts
		opts.Rooms = rooms
		if err := aggregate(cmd.Context(), opts); err != nil {
			logrus.Fatalf("Aggregation failed: %v", err)
		}
	},
}

// loadRoomIndex reads room codes from a validated facility config.
func loadRoomIndex(path string) (slots.RoomIndex, error) {
	cfg, err := loadFacilityConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.RoomCodes(), nil
}

func aggregate(ctx context.Context, opts aggregateOptions) error {
	mode, err := slots.ParseSourceMode(opts.Source)
	if err != nil {
		return err
	}
	var src slots.Source
	switch mode {
	case slots.ModeOccupancy:
		records, err := readFile(opts.Input, sim.ReadRecordsCSV)
		if err != nil {
			return err
		}
		src = slots.OccupancySource{Records: records}
	case slots.ModeEventLog:
		events, err := readFile(opts.Input, eventlog.ReadCSV)
		if err != nil {
			return err
		}
		src = slots.EventLogSource{Events: events}
	}

	table, err := slots.Build(src, opts.Rooms, opts.Policy)
	if err != nil {
		return err
	}
	if opts.Output != "" {
		if err := writeFile(opts.Output, func(w io.Writer) error { return slots.WriteCSV(w, table) }); err != nil {
			return err
		}
		logrus.Infof("Wrote %d slots to %s", len(table), opts.Output)
	}
	if opts.DSN != "" {
		if err := saveSlots(ctx, opts, table); err != nil {
			return fmt.Errorf("saving to postgres: %w", err)
		}
	}
	return nil
}

func saveSlots(ctx context.Context, opts aggregateOptions, table []slots.Slot) error {
	pool, err := store.Connect(ctx, opts.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	tbl, err := store.NewSlotTable(pool, opts.Table)
	if err != nil {
		return err
	}
	if err := tbl.EnsureSchema(ctx); err != nil {
		return err
	}
	return tbl.Save(ctx, opts.RunID, table)
}

func init() {
	f := aggregateCmd.Flags()
	f.StringVar(&aggOpts.Source, "source", string(slots.ModeOccupancy), "Slot source: occupancy (records CSV) or eventlog (events CSV)")
	f.StringVar(&aggOpts.Input, "in", "records.csv", "Input CSV")
	f.StringVar(&aggOpts.Policy, "label", "historical", "Label policy: live or historical")
	f.StringVar(&aggOpts.Output, "out", "slots.csv", "Output slot table CSV (empty to skip)")
	f.StringVar(&facilityConfigPath, "config", "", "Facility YAML config supplying room codes")
	f.StringVar(&aggOpts.DSN, "postgres-dsn", "", "Also store the slot table in Postgres")
	f.StringVar(&aggOpts.RunID, "run-id", "default", "Run identifier for stored slots")
	f.StringVar(&aggOpts.Table, "table", store.DefaultTable, "Postgres table name")
	rootCmd.AddCommand(aggregateCmd)
}
