// rtusim запускает имитатор RTU резервуара по таблице точек из RTU_POINTS_FILE.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/iwtcode/tankRtu/internal/adapters/simulator"
	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"
)

func main() {
	cfg, err := config.LoadConfiguration()
	if err != nil {
		panic(err)
	}

	logger := logging.NewLogger(&logging.Config{
		Enabled:    cfg.Logging.Enable,
		Level:      cfg.Logging.Level,
		LogsDir:    cfg.Logging.LogsDir,
		SavingDays: uint(cfg.Logging.SavingDays),
	}, "RtuSimulator")
	defer logger.Close()

	items, err := config.LoadPoints(cfg.Rtu.PointsFile)
	if err != nil {
		logger.Error("Failed to load point table", "error", err)
		os.Exit(1)
	}

	sim := simulator.New(items, logger)
	if err := sim.Listen(cfg.Simulator.Listen); err != nil {
		logger.Error("Failed to start simulator", "address", cfg.Simulator.Listen, "error", err)
		os.Exit(1)
	}
	defer sim.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
