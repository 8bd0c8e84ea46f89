package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/talkincode/storefront/pkg/metrics"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.UTC
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err = a.sched.AddFunc("@hourly", a.guard("purge_tokens", a.SchedPurgeTokensTask))
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	if a.sweeper != nil {
		_, err = a.sched.AddFunc("@every 5m", a.guard("cache_sweep", a.SchedCacheSweepTask))
		if err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	_, err = a.sched.AddFunc("@every 30s", a.guard("system_monitor", a.SchedSystemMonitorTask))
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

func (a *Application) guard(name string, task func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("scheduled task panic",
					zap.String("namespace", "job"),
					zap.String("task", name),
					zap.Any("panic", r))
			}
		}()
		task()
	}
}

// SchedPurgeTokensTask removes access tokens past their expiry
func (a *Application) SchedPurgeTokensTask() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := a.auth.PurgeExpiredTokens(ctx)
	if err != nil {
		zap.L().Error("purge expired tokens", zap.String("namespace", "job"), zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("purged expired tokens", zap.String("namespace", "job"), zap.Int64("count", n))
	}
}

func (a *Application) SchedCacheSweepTask() {
	if a.sweeper == nil {
		return
	}
	if n := a.sweeper.Sweep(); n > 0 {
		zap.L().Debug("cache sweep", zap.String("namespace", "job"), zap.Int("evicted", n))
	}
}

// SchedSystemMonitorTask samples host cpu and memory into the metrics registry
func (a *Application) SchedSystemMonitorTask() {
	var cpuUse float64
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		cpuUse = pct[0]
	}
	var memUsed uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		memUsed = vm.Used
	}
	metrics.SetSystemUsage(cpuUse, memUsed)
}
