package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"hedera-order-bot-go/internal/config"
	"hedera-order-bot-go/internal/database"
	"hedera-order-bot-go/internal/logger"
	"hedera-order-bot-go/internal/models"
)

// ordercli is the operator tool for the threshold store: inspecting
// thresholds and performing the explicit resets the engine itself never does.
func main() {
	var (
		configPath = flag.String("config", "./configs", "config directory")
		list       = flag.Bool("list", false, "list all thresholds")
		show       = flag.String("show", "", "show one threshold by id")
		reset      = flag.String("reset", "", "reset a failed or stuck threshold to pending")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	switch {
	case *list:
		var thresholds []models.Threshold
		if err := db.Order("id").Find(&thresholds).Error; err != nil {
			log.Fatal("Failed to list thresholds", zap.Error(err))
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPAIR\tSTATUS\tACTIVE\tSTOP\tBUY\tLAST EXECUTED\tTX")
		for _, t := range thresholds {
			lastExec := "-"
			if t.LastExecutedAt != nil {
				lastExec = t.LastExecutedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s/%s\t%s\t%v\t%v\t%v\t%s\t%s\n",
				t.ID, t.TokenA, t.TokenB, t.Status, t.IsActive,
				t.StopLossPrice, t.BuyOrderPrice, lastExec, t.TxHash)
		}
		w.Flush()

	case *show != "":
		var t models.Threshold
		if err := db.First(&t, "id = ?", *show).Error; err != nil {
			log.Fatal("Threshold not found", zap.String("id", *show), zap.Error(err))
		}
		fmt.Printf("%+v\n", t)

	case *reset != "":
		// Operator reset is the only way a failed threshold returns to
		// pending; a pending or executed row is left alone.
		res := db.Model(&models.Threshold{}).
			Where("id = ? AND status IN ?", *reset,
				[]models.ThresholdStatus{models.StatusFailed, models.StatusExecuting}).
			Updates(map[string]interface{}{
				"status":     models.StatusPending,
				"last_error": "",
			})
		if res.Error != nil {
			log.Fatal("Reset failed", zap.Error(res.Error))
		}
		if res.RowsAffected == 0 {
			log.Fatal("Threshold is not in a resettable state", zap.String("id", *reset))
		}
		log.Info("Threshold reset to pending", zap.String("id", *reset))

	default:
		flag.Usage()
		os.Exit(2)
	}
}
