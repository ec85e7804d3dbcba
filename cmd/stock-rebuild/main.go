package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"go-postgres-procurement/config"
	"go-postgres-procurement/models"
)

// Rebuilds the cached stock projection from the ledger, the source of
// truth. Run after manual data surgery or if a projection row is suspected
// stale. A redis lock keeps two rebuilds from racing when redis is
// configured.
func main() {
	materialID := flag.Int("material-id", 0, "Rebuild a single material")
	all := flag.Bool("all", false, "Rebuild every material")
	flag.Parse()

	if *materialID == 0 && !*all {
		fmt.Fprintln(os.Stderr, "--material-id or --all is required")
		os.Exit(1)
	}

	_ = godotenv.Load()
	config.ConnectDB()
	config.ConnectRedis()
	logger := logrus.New()

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(config.GetRedisContext(), "stock-rebuild", 5*time.Minute, nil)
		if err == redislock.ErrNotObtained {
			logger.Fatal("another rebuild is already running")
		} else if err != nil {
			logger.Fatalf("obtain rebuild lock: %v", err)
		}
		defer func() { _ = lock.Release(config.GetRedisContext()) }()
	}

	var ids []uint
	if *all {
		if err := config.DB.Model(&models.Material{}).Order("id").Pluck("id", &ids).Error; err != nil {
			logger.Fatalf("list materials: %v", err)
		}
	} else {
		ids = []uint{uint(*materialID)}
	}

	for _, id := range ids {
		sum, err := models.RebuildMaterialStock(config.DB, id)
		if err != nil {
			logger.WithField("material_id", id).Errorf("rebuild failed: %v", err)
			continue
		}
		logger.WithFields(logrus.Fields{
			"material_id": id,
			"on_hand":     sum.String(),
		}).Info("projection rebuilt")
	}
}
