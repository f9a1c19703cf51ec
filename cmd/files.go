package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/laundry-sim/laundry-sim/sim/slots"
	"github.com/laundry-sim/laundry-sim/store"
)

// writeFile creates path and streams write's output into it.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// readFile opens path and decodes it with read.
func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	v, err := read(bufio.NewReader(f))
	if err != nil {
		return zero, fmt.Errorf("reading %s: %w", path, err)
	}
	return v, nil
}

// slotSource locates a slot table: a CSV file, or a run in Postgres when
// DSN is set.
type slotSource struct {
	Path  string
	DSN   string
	RunID string
	Table string
}

func (s slotSource) load(ctx context.Context) ([]slots.Slot, error) {
	if s.DSN == "" {
		if s.Path == "" {
			return nil, fmt.Errorf("no slot table given: set --slots or --postgres-dsn")
		}
		return readFile(s.Path, slots.ReadCSV)
	}
	pool, err := store.Connect(ctx, s.DSN)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	tbl, err := store.NewSlotTable(pool, s.Table)
	if err != nil {
		return nil, err
	}
	rows, err := tbl.Load(ctx, s.RunID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no slots stored for run %q in %s", s.RunID, s.Table)
	}
	return rows, nil
}
