package lib

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

var scheduler gocron.Scheduler

func GetScheduler() (gocron.Scheduler, error) {
	if scheduler != nil {
		return scheduler, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		GetLogger().Error("error initializing scheduler", zap.Error(err))
		return nil, err
	}
	scheduler = sched
	return sched, nil
}

// CreateDurationJob runs task every interval, one run at a time.
func CreateDurationJob(name string, interval time.Duration, task func(ctx context.Context)) (*string, error) {
	sched, err := GetScheduler()
	if err != nil {
		return nil, err
	}
	j, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}
	id := j.ID().String()
	GetLogger().Info("scheduled job", zap.String("name", name), zap.String("id", id), zap.Duration("interval", interval))
	return &id, nil
}

func ShutdownScheduler() error {
	if scheduler == nil {
		return nil
	}
	err := scheduler.Shutdown()
	scheduler = nil
	return err
}
