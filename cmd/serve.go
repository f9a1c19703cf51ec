package cmd

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/laundry-sim/laundry-sim/api"
	"github.com/laundry-sim/laundry-sim/sim/forecast"
)

var (
	serveConfigPath string      // Serve YAML file
	serveFlags      ServeConfig // Flag values, applied when set
)

// serveCmd hosts the forecast API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve forecasts over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadServeConfig(serveConfigPath)
		if err != nil {
			logrus.Fatalf("Failed to load serve config: %v", err)
		}
		f := cmd.Flags()
		if f.Changed("addr") {
			cfg.Addr = serveFlags.Addr
		}
		if f.Changed("model") {
			cfg.Model = serveFlags.Model
		}
		if f.Changed("room-code") {
			cfg.Serving.RoomCode = serveFlags.Serving.RoomCode
		}
		if f.Changed("last-1h") {
			cfg.Serving.Last1h = serveFlags.Serving.Last1h
		}
		if f.Changed("last-3h") {
			cfg.Serving.Last3h = serveFlags.Serving.Last3h
		}
		if err := serve(cmd.Context(), cfg); err != nil {
			logrus.Fatalf("Server failed: %v", err)
		}
	},
}

func serve(ctx context.Context, cfg ServeConfig) error {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	svc, err := forecast.NewService(cfg.Messages)
	if err != nil {
		return err
	}
	srv := api.NewServer(svc)
	// The listener comes up first; forecasts answer 503 until the load ends.
	go loadModel(svc, cfg.Model, cfg.Serving)
	return srv.Run(ctx, cfg.Addr)
}

// loadModel installs the artifact at path into svc, or marks the
// forecasting capability failed. Other routes keep serving either way.
func loadModel(svc *forecast.Service, path string, sc forecast.ServingConfig) {
	art, err := forecast.LoadArtifact(path)
	if err == nil {
		var p *forecast.Predictor
		if p, err = forecast.NewArtifactPredictor(art, sc); err == nil {
			svc.Install(p)
			logrus.Infof("Loaded %s model from %s (%d trees)", art.Policy, path, len(art.Forest.Trees))
			return
		}
	}
	logrus.Errorf("Model load failed, forecasts unavailable: %v", err)
	svc.Fail(err)
}

func init() {
	defaults := defaultServeConfig()
	f := serveCmd.Flags()
	f.StringVar(&serveConfigPath, "config", "", "Serve YAML config (defaults when empty)")
	f.StringVar(&serveFlags.Addr, "addr", defaults.Addr, "Listen address")
	f.StringVar(&serveFlags.Model, "model", defaults.Model, "Model artifact")
	f.IntVar(&serveFlags.Serving.RoomCode, "room-code", 0, "Room code feature")
	f.Float64Var(&serveFlags.Serving.Last1h, "last-1h", 0, "Previous-hour usage feature")
	f.Float64Var(&serveFlags.Serving.Last3h, "last-3h", 0, "Three-hour mean usage feature")
	rootCmd.AddCommand(serveCmd)
}
