package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laundry-sim/laundry-sim/sim"
	"github.com/laundry-sim/laundry-sim/sim/eventlog"
	"github.com/laundry-sim/laundry-sim/sim/facility"
	"github.com/laundry-sim/laundry-sim/sim/forecast"
	"github.com/laundry-sim/laundry-sim/sim/label"
	"github.com/laundry-sim/laundry-sim/sim/slots"
)

func quickTrainConfig(policy label.Policy) forecast.TrainConfig {
	cfg := forecast.DefaultTrainConfig()
	cfg.Policy = policy
	cfg.Forest.Trees = 10
	return cfg
}

func TestPipeline_EventLogToWeeklyReport(t *testing.T) {
	dir := t.TempDir()
	events := filepath.Join(dir, "events.csv")
	table := filepath.Join(dir, "slots.csv")
	model := filepath.Join(dir, "model.json")
	report := filepath.Join(dir, "weekly.json")
	ctx := context.Background()

	// GIVEN a generated event log
	require.NoError(t, generateEvents(eventlog.DefaultGeneratorConfig(), 7, events))

	// WHEN it is aggregated with decile labels and a model is trained
	require.NoError(t, aggregate(ctx, aggregateOptions{
		Source: "eventlog", Input: events, Policy: "historical", Output: table,
		Rooms: facility.DefaultConfig().RoomCodes(),
	}))
	var evalOut bytes.Buffer
	require.NoError(t, train(ctx, slotSource{Path: table}, quickTrainConfig(label.PolicyHistorical), model, &evalOut))
	assert.Contains(t, evalOut.String(), "Classification Report")

	// THEN a Saturday forecast has a full timeline
	var out bytes.Buffer
	require.NoError(t, predict(model, "2026-10-24", forecast.ServingConfig{RoomCode: 1}, &out))
	var resp forecast.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "2026-10-24", resp.Date)
	require.Len(t, resp.Timeline, 24)
	for _, h := range resp.Timeline {
		assert.True(t, h.PredictedCongestion >= 1 && h.PredictedCongestion <= 10)
	}

	// AND the weekly report covers both rooms every hour
	require.NoError(t, export(ctx, model, slotSource{Path: table}, report, "", 0))
	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var rep forecast.WeeklyReport
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, "1-10", rep.CongestionScale)
	require.Len(t, rep.Week.Fri, 24)
	assert.Len(t, rep.Week.Fri[18].Rooms, 2)
}

func TestPipeline_SimulationToLiveModel(t *testing.T) {
	dir := t.TempDir()
	records := filepath.Join(dir, "records.csv")
	table := filepath.Join(dir, "slots.csv")
	model := filepath.Join(dir, "model.json")
	ctx := context.Background()

	cfg := facility.DefaultConfig()
	cfg.Days = 7
	var metrics bytes.Buffer
	require.NoError(t, simulate(ctx, cfg, records, &metrics))
	assert.Contains(t, metrics.String(), "=== Simulation Metrics (men) ===")

	recs, err := readFile(records, sim.ReadRecordsCSV)
	require.NoError(t, err)
	assert.Len(t, recs, 2*7*sim.TicksPerDay)

	require.NoError(t, aggregate(ctx, aggregateOptions{
		Source: "occupancy", Input: records, Policy: "live", Output: table, Rooms: cfg.RoomCodes(),
	}))
	rows, err := readFile(table, slots.ReadCSV)
	require.NoError(t, err)
	require.Len(t, rows, 2*7*24)
	for _, s := range rows {
		require.True(t, s.Congestion >= 0 && s.Congestion <= 3)
	}

	var evalOut bytes.Buffer
	require.NoError(t, train(ctx, slotSource{Path: table}, quickTrainConfig(label.PolicyLive), model, &evalOut))
	art, err := forecast.LoadArtifact(model)
	require.NoError(t, err)
	assert.Equal(t, 4, art.NumClasses)

	// AND the per-tick records train a live model on the calendar schema
	tickModel := filepath.Join(dir, "tick_model.json")
	cfgTick := quickTrainConfig(label.PolicyLive)
	cfgTick.Features = forecast.RecordFeatures
	evalOut.Reset()
	require.NoError(t, trainOnRecords(records, cfgTick, tickModel, &evalOut))
	assert.Contains(t, evalOut.String(), "Classification Report")
	tickArt, err := forecast.LoadArtifact(tickModel)
	require.NoError(t, err)
	assert.Equal(t, label.PolicyLive, tickArt.Policy)
	assert.Equal(t, forecast.RecordFeatures, tickArt.Features)

	var out bytes.Buffer
	require.NoError(t, predict(tickModel, "2026-10-21", forecast.ServingConfig{}, &out))
	var resp forecast.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Timeline, 24)
	for _, h := range resp.Timeline {
		assert.True(t, h.PredictedCongestion >= 0 && h.PredictedCongestion <= 3)
	}
}

func TestAggregate_LiveRejectsEventLog(t *testing.T) {
	dir := t.TempDir()
	events := filepath.Join(dir, "events.csv")
	cfg := eventlog.DefaultGeneratorConfig()
	cfg.Events = 50
	require.NoError(t, generateEvents(cfg, 1, events))

	err := aggregate(context.Background(), aggregateOptions{
		Source: "eventlog", Input: events, Policy: "live", Rooms: facility.DefaultConfig().RoomCodes(),
	})
	assert.ErrorIs(t, err, sim.ErrInvalidConfig)
}

func TestLoadRoomIndex_RejectsSharedCodes(t *testing.T) {
	// GIVEN a facility config that gives two rooms the same code
	path := filepath.Join(t.TempDir(), "facility.yaml")
	doc := "rooms:\n  - name: men\n    code: 0\n  - name: women\n    code: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := loadRoomIndex(path)
	assert.ErrorIs(t, err, sim.ErrInvalidConfig)

	rooms, err := loadRoomIndex("")
	require.NoError(t, err)
	assert.Equal(t, slots.RoomIndex{"men": 0, "women": 1}, rooms)
}

func TestSlotSource_RequiresLocation(t *testing.T) {
	_, err := slotSource{}.load(context.Background())
	assert.Error(t, err)
}

func TestLoadModel_FailureMarksServiceUnavailable(t *testing.T) {
	svc, err := forecast.NewService(forecast.DefaultMessages())
	require.NoError(t, err)

	loadModel(svc, filepath.Join(t.TempDir(), "missing.json"), forecast.ServingConfig{})

	assert.ErrorIs(t, svc.Status(), forecast.ErrModelNotReady)
	assert.ErrorContains(t, svc.Status(), "missing.json")
}

func TestSampleConfigs_Parse(t *testing.T) {
	// GIVEN the sample configs shipped in configs/
	fac, err := facility.LoadConfig("../configs/facility.yaml")
	require.NoError(t, err)
	require.NoError(t, fac.Validate())
	assert.Equal(t, map[string]int{"men": 0, "women": 1}, fac.RoomCodes())

	tc, err := loadTrainConfig("../configs/train.yaml")
	require.NoError(t, err)
	assert.Equal(t, label.PolicyHistorical, tc.Policy)
	assert.Equal(t, forecast.DefaultFeatures, tc.Features)

	sc, err := loadServeConfig("../configs/serve.yaml")
	require.NoError(t, err)
	assert.Equal(t, ":8080", sc.Addr)
	assert.Contains(t, sc.Messages.Peak, "{{.Hour}}")
}

func TestLoadServeConfig_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adress: \":9090\"\n"), 0644))
	_, err := loadServeConfig(path)
	assert.Error(t, err)
}

func TestLoadServeConfig_KeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serving:\n  room_code: 1\n"), 0644))
	cfg, err := loadServeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Serving.RoomCode)
	assert.Equal(t, "model.json", cfg.Model)
	assert.Equal(t, forecast.DefaultMessages(), cfg.Messages)
}
