package boot

import (
	"clinic/src/config"
	"clinic/src/db"
	"clinic/src/finalize"
	"clinic/src/lib"
	"clinic/src/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.BookingIntent{},
	)
	if err != nil {
		lib.GetLogger().Fatal("error migration", zap.Error(err))
	}

	return db
}

// InitScheduler registers the background jobs and starts the scheduler.
func InitScheduler(cfg *config.Config, svc *finalize.Service) {
	sched, err := lib.GetScheduler()
	if err != nil {
		lib.GetLogger().Error("An error has occurred. Check logs for info", zap.Error(err))
		return
	}
	if cfg.SweepInterval > 0 {
		if _, err := svc.ScheduleSweep(cfg.SweepInterval, cfg.PendingTTL); err != nil {
			lib.GetLogger().Error("Error scheduling abandoned intent sweep", zap.Error(err))
			return
		}
	}
	lib.GetLogger().Info("Jobs in queue", zap.Int("count", len(sched.Jobs())))
	sched.Start()
}

func StopScheduler() {
	if err := lib.ShutdownScheduler(); err != nil {
		lib.GetLogger().Error("An error has occurred while stopping Scheduler", zap.Error(err))
	}
}
